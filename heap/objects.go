package heap

// Typed layouts. Each embeds Header as its first field, matching the
// original's HeapObject::Layout base; where the original prefixes a slot
// with klass_ (an explicit link to the object's Behavior, alongside
// Header's own ClassID field), that field is kept here too, following
// original_source/vm/object.h; AllocateRegularObject and FinalizeBulkLoad
// fill it from the class table entry at the object's own header class id.

// ByteArray is opaque raw storage: no outgoing edges, so its Pointers()
// is nil and it plays no part in graph walks except as a leaf.
type ByteArray struct {
	Header
	Bytes []byte
}

func (o *ByteArray) Head() *Header       { return &o.Header }
func (o *ByteArray) Pointers() []*Ref    { return nil }
func (o *ByteArray) HeapSizeFromClass() int {
	return sizeUnitsFor(len(o.Bytes))
}

// String shares ByteArray's shape under a distinct class id
// (original_source/vm/object.h: "class String::Layout : public
// Bytes::Layout {}").
type String struct {
	Header
	Bytes []byte
}

func (o *String) Head() *Header    { return &o.Header }
func (o *String) Pointers() []*Ref { return nil }
func (o *String) HeapSizeFromClass() int {
	return sizeUnitsFor(len(o.Bytes))
}

// Array is a fixed-length, densely-indexed slot vector; its elements are
// ordinary strong edges.
type Array struct {
	Header
	Elements []Ref
}

func (o *Array) Head() *Header    { return &o.Header }
func (o *Array) Pointers() []*Ref { return refSlice(o.Elements) }
func (o *Array) HeapSizeFromClass() int {
	return sizeUnitsForSlots(len(o.Elements))
}

// WeakArray has the same storage shape as Array, but its elements do not
// confer reachability on their referents (spec.md §4.8): gc.go's worklist
// walk skips edges sourced from a WeakArray, and Unlink nils them out
// via UpdateNoCheck when their referent is collected.
type WeakArray struct {
	Header
	Elements []Ref
}

func (o *WeakArray) Head() *Header    { return &o.Header }
func (o *WeakArray) Pointers() []*Ref { return refSlice(o.Elements) }
func (o *WeakArray) HeapSizeFromClass() int {
	return sizeUnitsForSlots(len(o.Elements))
}

// Ephemeron is a key/value/finalizer triple (spec.md §4.8). Only the Key
// edge is weak: checkReachable does not follow it, and once Key's referent
// is reclaimed, unlink clears Key and Value and queues Finalizer (weak.go).
// Value and Finalizer are ordinary strong edges, so a reachable ephemeron
// keeps its value and finalizer alive whether or not Key is reachable;
// Pointers() reports all three.
type Ephemeron struct {
	Header
	Key, Value, Finalizer Ref
}

func (o *Ephemeron) Head() *Header { return &o.Header }
func (o *Ephemeron) Pointers() []*Ref {
	return []*Ref{&o.Key, &o.Value, &o.Finalizer}
}
func (o *Ephemeron) HeapSizeFromClass() int { return sizeUnitsForSlots(3) }

// Closure captures a defining activation plus a variable-length copied
// vector (original_source/vm/object.h's Closure::Layout).
type Closure struct {
	Header
	DefiningActivation Ref
	InitialBCI         int
	NumArgs            int
	Copied             []Ref
}

func (o *Closure) Head() *Header { return &o.Header }
func (o *Closure) Pointers() []*Ref {
	return append([]*Ref{&o.DefiningActivation}, refSlice(o.Copied)...)
}
func (o *Closure) HeapSizeFromClass() int {
	return sizeUnitsForSlots(1 + len(o.Copied))
}

// activationMaxTemps mirrors original_source/vm/object.h's kMaxTemps: the
// interpreter's activation records are fixed-size, not variable-length.
const activationMaxTemps = 35

// Activation is an interpreter call frame. It is the one object kind this
// package allocates but never interprets the bytecode of: its shape is
// carried purely so the GC can walk it, per spec.md §1's boundary between
// the heap and the (out-of-scope) interpreter.
type Activation struct {
	Header
	Sender      Ref
	Method      Ref
	Closure     Ref
	Receiver    Ref
	BCI         int
	StackDepth  int
	Temps       [activationMaxTemps]Ref
}

func (o *Activation) Head() *Header { return &o.Header }
func (o *Activation) Pointers() []*Ref {
	ptrs := []*Ref{&o.Sender, &o.Method, &o.Closure, &o.Receiver}
	for i := range o.Temps {
		ptrs = append(ptrs, &o.Temps[i])
	}
	return ptrs
}
func (o *Activation) HeapSizeFromClass() int {
	return sizeUnitsForSlots(4 + activationMaxTemps)
}

// Method is a compiled method: bytecode plus its literal pool and the
// mixin/selector/source metadata the debugger side of a VM wants.
type Method struct {
	Header
	HeaderBits Ref
	Literals   Ref
	Bytecode   Ref
	Mixin      Ref
	Selector   Ref
	Source     Ref
}

func (o *Method) Head() *Header { return &o.Header }
func (o *Method) Pointers() []*Ref {
	return []*Ref{&o.HeaderBits, &o.Literals, &o.Bytecode, &o.Mixin, &o.Selector, &o.Source}
}
func (o *Method) HeapSizeFromClass() int { return sizeUnitsForSlots(6) }

// Behavior is the common shape shared by Class and Metaclass
// (original_source/vm/object.h's Behavior::Layout).
type Behavior struct {
	Header
	Superclass      Ref
	Methods         Ref
	EnclosingObject Ref
	Mixin           Ref
	ClassIDSlot     Ref // the SmallInteger class id this Behavior describes.
	Format          Ref
}

func (o *Behavior) Head() *Header { return &o.Header }
func (o *Behavior) Pointers() []*Ref {
	return []*Ref{&o.Superclass, &o.Methods, &o.EnclosingObject, &o.Mixin, &o.ClassIDSlot, &o.Format}
}
func (o *Behavior) HeapSizeFromClass() int { return sizeUnitsForSlots(6) }

// Class adds a name and the weak set of known subclasses.
type Class struct {
	Behavior
	Name        Ref
	Subclasses  Ref // a WeakArray value.
}

func (o *Class) Head() *Header { return &o.Header }
func (o *Class) Pointers() []*Ref {
	return append(o.Behavior.Pointers(), &o.Name, &o.Subclasses)
}
func (o *Class) HeapSizeFromClass() int { return sizeUnitsForSlots(8) }

// Metaclass links back to the single Class instance it classifies.
type Metaclass struct {
	Behavior
	ThisClass Ref
}

func (o *Metaclass) Head() *Header { return &o.Header }
func (o *Metaclass) Pointers() []*Ref {
	return append(o.Behavior.Pointers(), &o.ThisClass)
}
func (o *Metaclass) HeapSizeFromClass() int { return sizeUnitsForSlots(7) }

// AbstractMixin carries a class's own method dictionary, independent of
// inheritance (original_source/vm/object.h's AbstractMixin::Layout).
type AbstractMixin struct {
	Header
	Name            Ref
	Methods         Ref
	EnclosingMixin  Ref
}

func (o *AbstractMixin) Head() *Header { return &o.Header }
func (o *AbstractMixin) Pointers() []*Ref {
	return []*Ref{&o.Name, &o.Methods, &o.EnclosingMixin}
}
func (o *AbstractMixin) HeapSizeFromClass() int { return sizeUnitsForSlots(3) }

// Message is a reified send: selector plus argument array, used both by
// the interpreter's doesNotUnderstand: path and by Heap.AllocateMessage's
// lazily-self-registering class id (SPEC_FULL.md item 6).
type Message struct {
	Header
	Selector  Ref
	Arguments Ref
}

func (o *Message) Head() *Header    { return &o.Header }
func (o *Message) Pointers() []*Ref { return []*Ref{&o.Selector, &o.Arguments} }
func (o *Message) HeapSizeFromClass() int { return sizeUnitsForSlots(2) }

// ObjectStore is the interpreter's single root object: every well-known
// object and class the interpreter needs a stable handle to lives here as
// a named slot, and Heap's RootPointers walk starts from it.
type ObjectStore struct {
	Header
	Nil, False, True   Ref
	MessageLoop        Ref
	CommonSelectors    Ref
	DoesNotUnderstand  Ref
	NonBooleanReceiver Ref
	CannotReturn       Ref
	AboutToReturnThrough Ref
	UnusedBytecode     Ref
	DispatchMessage    Ref
	DispatchSignal     Ref
	ArrayClass         Ref
	ByteArrayClass     Ref
	StringClass        Ref
	ClosureClass       Ref
	EphemeronClass     Ref
	Float64Class       Ref
	LargeIntegerClass  Ref
	MediumIntegerClass Ref
	MessageClass       Ref
	SmallIntegerClass  Ref
	WeakArrayClass     Ref
}

func (o *ObjectStore) Head() *Header { return &o.Header }
func (o *ObjectStore) Pointers() []*Ref {
	return []*Ref{
		&o.Nil, &o.False, &o.True, &o.MessageLoop, &o.CommonSelectors,
		&o.DoesNotUnderstand, &o.NonBooleanReceiver, &o.CannotReturn,
		&o.AboutToReturnThrough, &o.UnusedBytecode, &o.DispatchMessage,
		&o.DispatchSignal, &o.ArrayClass, &o.ByteArrayClass, &o.StringClass,
		&o.ClosureClass, &o.EphemeronClass, &o.Float64Class,
		&o.LargeIntegerClass, &o.MediumIntegerClass, &o.MessageClass,
		&o.SmallIntegerClass, &o.WeakArrayClass,
	}
}
func (o *ObjectStore) HeapSizeFromClass() int { return sizeUnitsForSlots(23) }

// Float64 is an unboxed-in-C++, boxed-in-this-object-model double; the
// teacher's own Value already NaN-boxes floats inline, but spec.md's plain
// tagged pointer scheme has no float fast path, so every float is a heap
// box here.
type Float64 struct {
	Header
	FloatValue float64
}

func (o *Float64) Head() *Header       { return &o.Header }
func (o *Float64) Pointers() []*Ref    { return nil }
func (o *Float64) HeapSizeFromClass() int { return sizeUnitsFor(8) }

// MediumInteger holds an integer too large for the tagged SmallInteger
// range but small enough to fit a machine int64 without digit storage.
type MediumInteger struct {
	Header
	IntValue int64
}

func (o *MediumInteger) Head() *Header       { return &o.Header }
func (o *MediumInteger) Pointers() []*Ref    { return nil }
func (o *MediumInteger) HeapSizeFromClass() int { return sizeUnitsFor(8) }

// ForwardingCorpse is a dedicated layout for the forwarding-corpse class
// id (spec.md §4.9). Become does not produce instances of it: it relabels
// the forwarder's own Header in place (heap/become.go), keeping the
// forwarder's concrete type. HeapSizeFromClass reports overflowSize, which
// only a caller constructing a ForwardingCorpse sets.
type ForwardingCorpse struct {
	Header
	overflowSize int
}

func (o *ForwardingCorpse) Head() *Header       { return &o.Header }
func (o *ForwardingCorpse) Pointers() []*Ref    { return nil }
func (o *ForwardingCorpse) HeapSizeFromClass() int { return o.overflowSize }

// RegularObject is an instance of a user-defined class: a class link plus
// a variable-length slot vector, per original_source/vm/object.h's
// RegularObject::Layout (klass_ + slots_[]).
type RegularObject struct {
	Header
	Class Ref
	Slots []Ref
}

func (o *RegularObject) Head() *Header    { return &o.Header }
func (o *RegularObject) Pointers() []*Ref { return append([]*Ref{&o.Class}, refSlice(o.Slots)...) }
func (o *RegularObject) HeapSizeFromClass() int {
	return sizeUnitsForSlots(1 + len(o.Slots))
}

// sizeUnitsFor rounds a byte length up to whole ObjectAlignment units,
// matching the header size field's own unit (spec.md §4.2).
func sizeUnitsFor(byteLen int) int {
	return (byteLen + ObjectAlignment - 1) / ObjectAlignment
}

// sizeUnitsForSlots is sizeUnitsFor scaled by the machine word size a Ref
// or Value occupies conceptually; kept distinct from sizeUnitsFor so a
// future change to slot width doesn't silently affect byte-array sizing.
func sizeUnitsForSlots(numSlots int) int {
	return sizeUnitsFor(numSlots * ObjectAlignment)
}

func refSlice(refs []Ref) []*Ref {
	out := make([]*Ref, len(refs))
	for i := range refs {
		out[i] = &refs[i]
	}
	return out
}
