package heap

// Class ids. Reserved values match the layout spec.md §3 fixes; user
// classes start at ClassIDFirstRegularObject.
const (
	ClassIDIllegal          uint32 = 0
	ClassIDForwardingCorpse uint32 = 1
	ClassIDFreeListElement  uint32 = 2
	ClassIDSmallInteger     uint32 = 3
	ClassIDMediumInteger    uint32 = 4
	ClassIDLargeInteger     uint32 = 5
	ClassIDFloat            uint32 = 6
	ClassIDByteArray        uint32 = 7
	ClassIDString           uint32 = 8
	ClassIDArray            uint32 = 9
	ClassIDWeakArray        uint32 = 10
	ClassIDEphemeron        uint32 = 11
	ClassIDActivation       uint32 = 12
	ClassIDClosure          uint32 = 13

	ClassIDFirstLegal          uint32 = ClassIDSmallInteger
	ClassIDFirstRegularObject uint32 = 14
)

// Header bit layout within headerWord, following the bitfield style of
// vm/value.go's NaN-boxing constants: fixed masks and shifts rather than a
// reusable bitfield package (see DESIGN.md).
const (
	markBit         = 1 << 0
	weakReferentBit = 1 << 1
	inClassTableBit = 1 << 2
	canonicalBit    = 1 << 3

	sizeFieldShift = 8
	sizeFieldBits  = 16
	sizeFieldMask  = uint64(1<<sizeFieldBits-1) << sizeFieldShift

	classIDFieldShift = sizeFieldShift + sizeFieldBits
	classIDFieldMask  = uint64(0xFFFFFFFF) << classIDFieldShift
)

// MaxEncodableSizeUnits is the largest heap size, in alignment units, the
// size field can represent directly. Larger objects encode zero and fall
// back to HeapSizeFromClass (spec.md §4.2).
const MaxEncodableSizeUnits = 1<<sizeFieldBits - 1

// ObjectAlignment is the granularity heap sizes are rounded to and the
// unit the header's size field counts in (spec.md §4.2).
const ObjectAlignment = 8

// Header is the fixed prefix present on every heap object: the two header
// words of spec.md §3 (bitfields + hash/index) plus the incoming edge
// list's sentinel head. Every concrete typed layout in objects.go embeds
// Header as its first field.
type Header struct {
	headerWord uint64
	hashIndex  uint64 // low32: table index. high32: identity hash (0 = unobserved).
	incoming   Link
	self       Object // back-pointer set once at allocation; see value.go
}

func (h *Header) init(self Object, cid uint32, sizeUnits int) {
	h.headerWord = 0
	h.hashIndex = 0
	h.incoming.initSelf()
	h.self = self
	h.setClassID(cid)
	h.setSizeUnits(sizeUnits)
}

func (h *Header) IsMarked() bool          { return h.headerWord&markBit != 0 }
func (h *Header) SetMarked(v bool)        { h.setFlag(markBit, v) }
func (h *Header) IsWeakReferent() bool    { return h.headerWord&weakReferentBit != 0 }
func (h *Header) SetWeakReferent(v bool)  { h.setFlag(weakReferentBit, v) }
func (h *Header) InClassTable() bool      { return h.headerWord&inClassTableBit != 0 }
func (h *Header) SetInClassTable(v bool)  { h.setFlag(inClassTableBit, v) }
func (h *Header) IsCanonical() bool       { return h.headerWord&canonicalBit != 0 }
func (h *Header) SetCanonical(v bool)     { h.setFlag(canonicalBit, v) }

func (h *Header) setFlag(bit uint64, v bool) {
	if v {
		h.headerWord |= bit
	} else {
		h.headerWord &^= bit
	}
}

// SizeUnits returns the encoded heap size in alignment units, or 0 if the
// true size overflowed the field and must come from HeapSizeFromClass.
func (h *Header) SizeUnits() int {
	return int((h.headerWord & sizeFieldMask) >> sizeFieldShift)
}

func (h *Header) setSizeUnits(units int) {
	if units < 0 || units > MaxEncodableSizeUnits {
		units = 0
	}
	h.headerWord = (h.headerWord &^ sizeFieldMask) | (uint64(units)<<sizeFieldShift)&sizeFieldMask
}

// ClassID returns the object's class id.
func (h *Header) ClassID() uint32 {
	return uint32((h.headerWord & classIDFieldMask) >> classIDFieldShift)
}

func (h *Header) setClassID(cid uint32) {
	h.headerWord = (h.headerWord &^ classIDFieldMask) | (uint64(cid)<<classIDFieldShift)&classIDFieldMask
}

// TableIndex returns the object's current slot in the object table.
func (h *Header) TableIndex() int {
	return int(uint32(h.hashIndex))
}

func (h *Header) setTableIndex(index int) {
	h.hashIndex = (h.hashIndex &^ 0xFFFFFFFF) | uint64(uint32(index))
}

// IdentityHash returns the lazily-populated identity hash, or 0 if it has
// never been observed.
func (h *Header) IdentityHash() uint32 {
	return uint32(h.hashIndex >> 32)
}

func (h *Header) setIdentityHash(hash uint32) {
	h.hashIndex = (h.hashIndex & 0xFFFFFFFF) | (uint64(hash) << 32)
}

// forwardTarget/setForwardTarget repurpose the hash/index word to hold the
// forwardee's Value once this header has become a ForwardingCorpse
// (spec.md §4.9). Only meaningful when ClassID() == ClassIDForwardingCorpse.
func (h *Header) forwardTarget() Value       { return Value(h.hashIndex) }
func (h *Header) setForwardTarget(v Value)   { h.hashIndex = uint64(v) }

// Incoming returns the sentinel head of this object's incoming-edge list.
func (h *Header) Incoming() *Link { return &h.incoming }

// Object is implemented by every heap object's concrete layout type. It is
// the polymorphic handle the heap, GC, and become machinery operate on in
// place of raw pointer arithmetic over a Layout struct.
type Object interface {
	// Head returns the object's fixed header.
	Head() *Header
	// Pointers returns the object's outgoing edges, in slot order. Objects
	// with no outgoing edges (bytes, medium integers, floats) return nil.
	Pointers() []*Ref
	// HeapSizeFromClass recovers the true heap size (in alignment units)
	// for objects whose header size field could not encode it (spec.md
	// §4.2). Every kind computes it from its own layout; variable-length
	// kinds compute it from their own length.
	HeapSizeFromClass() int
}

// HeapSize returns an object's logical size in alignment units, falling
// back to HeapSizeFromClass when the header's size field overflowed.
func HeapSize(obj Object) int {
	if units := obj.Head().SizeUnits(); units != 0 {
		return units
	}
	return obj.HeapSizeFromClass()
}
