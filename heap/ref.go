package heap

// Link is the intrusive doubly-linked-list node embedded in every Header
// (as the incoming-list sentinel) and in every Ref (as its list membership).
// This, not a bare pointer assignment, is what spec.md §9 calls the
// load-bearing novelty of the design: it lets reclamation walk backwards
// from a candidate object to every place that references it.
type Link struct {
	prev, next *Link
	owner      *Ref // nil for a Header's sentinel head; set for every Ref.
}

func (l *Link) initSelf() {
	l.prev = l
	l.next = l
}

// isEmpty reports whether l (used as a list sentinel) has no members.
func (l *Link) isEmpty() bool {
	return l.next == l
}

// insertBefore splices n, currently self-linked, in immediately before l.
func (l *Link) insertBefore(n *Link) {
	before := l.prev
	before.next = n
	n.prev = before
	n.next = l
	l.prev = n
}

// remove unsplices l from whatever list it is a member of and returns it
// to the self-linked neutral state.
func (l *Link) remove() {
	l.prev.next = l.next
	l.next.prev = l.prev
	l.initSelf()
}

// Ref is an edge record: it lives inside the source object's storage (one
// per outgoing slot) or inside a root holder, and is spliced onto its
// current target's incoming list. Reads return the current target; writes
// go through Update so incoming lists stay consistent (spec.md §4.1).
type Ref struct {
	Link
	from Object // nil marks this Ref as a GC root rather than a graph edge.
	to   Value
}

// Init sets a Ref that is known to be in the neutral (self-linked) state —
// true of every Ref inside a freshly allocated object, whose slots have
// never held a value before. Skips the unlink Update performs, matching
// the teacher's Init/Update split in vm/object.go's Ref-free analogues.
func (r *Ref) Init(from Object, to Value) {
	r.Link.initSelf()
	r.Link.owner = r
	r.from = from
	r.to = to
	if to.IsHeapObject() {
		target := HeapObjectFromValue(to)
		target.Head().Incoming().insertBefore(&r.Link)
	}
}

// InitRoot initializes a Ref as a GC root: from is the sentinel "root"
// marker (nil), so CheckReachable treats reaching it as reaching a root.
func (r *Ref) InitRoot(to Value) {
	r.Init(nil, to)
}

// From returns the Ref's source object, or nil if this Ref is a root.
func (r *Ref) From() Object { return r.from }

// To returns the Ref's current target.
func (r *Ref) To() Value { return r.to }

// Update retargets the Ref: unlinks from the old target's incoming list
// (if it was a heap object), stores the new target, and splices onto the
// new target's incoming list (if it is a heap object).
func (r *Ref) Update(newTo Value) {
	if r.to.IsHeapObject() {
		r.Link.remove()
	}
	r.to = newTo
	if newTo.IsHeapObject() {
		target := HeapObjectFromValue(newTo)
		target.Head().Incoming().insertBefore(&r.Link)
	}
}

// UpdateNoCheck behaves exactly like Update; it is the name the collector
// itself uses when nil-ing weak slots (heap/gc.go, heap/weak.go) and when
// resolving become forwarding (heap/become.go), marking those call sites
// as heap-internal rather than ordinary program mutation.
func (r *Ref) UpdateNoCheck(newTo Value) {
	r.Update(newTo)
}
