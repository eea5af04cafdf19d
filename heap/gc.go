package heap

// worklist is the collector's scratch mark stack: objects pushed here
// during one CheckReachable pass are the exact set that must be either
// unmarked (object turned out reachable) or unlinked-then-freed (it did
// not). Grounded on original_source/vm/heap.cc's worklist_/WorklistPush;
// growth beyond the initial capacity is left to append.
type worklist struct {
	items []Object
}

func newWorklist(initialCapacity int) *worklist {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	return &worklist{items: make([]Object, 0, initialCapacity)}
}

func (w *worklist) push(obj Object) {
	w.items = append(w.items, obj)
}

func (w *worklist) reset() {
	w.items = w.items[:0]
}

// gcRoundsPerStep is how many object-table samples GCStep takes per
// allocation, matching heap.cc's GCStep's `for (round = 0; round < 3;
// round++)` loop.
const gcRoundsPerStep = 3

// GCStep runs the collector's incremental unit of work: gcRoundsPerStep
// times, it samples one random object-table slot and asks whether that
// object is still reachable by walking backwards along incoming edges. If
// not, every object the walk touched (they are mutually unreachable, or
// the walk would have found a path out to something live) is unlinked and
// freed together. Called once per allocation by non-snapshot allocators,
// per spec.md §4.7 and original_source/vm/heap.cc's GCStep/Allocate.
func (h *Heap) GCStep() {
	for round := 0; round < gcRoundsPerStep; round++ {
		if h.table.len() <= 1 {
			return
		}
		index := 1 + h.rng.IntN(h.table.len()-1)
		candidate := h.table.at(index)
		if candidate == nil {
			continue
		}

		h.worklist.reset()
		if h.checkReachable(candidate) {
			for _, obj := range h.worklist.items {
				obj.Head().SetMarked(false)
				obj.Head().SetWeakReferent(false)
			}
			continue
		}

		includesClass := false
		for _, obj := range h.worklist.items {
			if obj.Head().InClassTable() {
				includesClass = true
			}
			h.unlink(obj)
		}
		for _, obj := range h.worklist.items {
			h.free(obj)
		}
		if includesClass && h.interp != nil {
			h.interp.ClearCache()
		}
	}
	h.gcCount++
}

// checkReachable is the heart of the backtracing collector: rather than
// tracing forward from roots, it starts at one candidate object and walks
// backward along incoming edges, breadth-first, looking for either a root
// marker (a Ref with From() == nil), a live handle, or the special
// nil/true/false objects (checked by identity, never by class id, per
// spec.md §9 open question (c)). If the walk exhausts the worklist without
// finding one, every object it touched is unreachable.
func (h *Heap) checkReachable(obj Object) bool {
	if h.interp != nil {
		if obj == h.interp.NilObj() || obj == h.interp.TrueObj() || obj == h.interp.FalseObj() {
			return true
		}
	}

	obj.Head().SetMarked(true)
	h.worklist.push(obj)

	for cursor := 0; cursor < len(h.worklist.items); cursor++ {
		current := h.worklist.items[cursor]

		if h.isHandleRoot(current) {
			return true
		}

		isWeakReferent := false
		head := current.Head().Incoming()
		for link := head.next; link != head; {
			next := link.next
			ref := link.owner
			if ref.From() == nil {
				return true
			}
			source := ref.From()
			if source.Head().ClassID() == ClassIDWeakArray || isEphemeronKeyRef(source, ref) {
				isWeakReferent = true
			} else if !source.Head().IsMarked() {
				source.Head().SetMarked(true)
				h.worklist.push(source)
			}
			link = next
		}
		if isWeakReferent {
			current.Head().SetWeakReferent(true)
		}
	}

	return false
}

// unlink detaches obj from the graph: if it was a weak referent, every Ref
// pointing at it is retargeted to nil (UpdateNoCheck, which splices each
// Ref off obj's incoming list, so the walk saves each link's successor
// before retargeting it); its own
// outgoing edges (skipping small-integer slots, which some layouts use for
// length bookkeeping HeapSizeFromClass or Free still need) are torn down;
// finally it is swapped out of the object table by index.
func (h *Heap) unlink(obj Object) {
	if obj.Head().IsWeakReferent() {
		head := obj.Head().Incoming()
		for link := head.next; link != head; {
			next := link.next
			ref := link.owner
			if eph, ok := ref.From().(*Ephemeron); ok && isEphemeronKeyRef(eph, ref) {
				h.finalizeEphemeron(eph)
			} else if h.interp != nil {
				ref.UpdateNoCheck(FromHeader(h.interp.NilObj().Head()))
			} else {
				ref.UpdateNoCheck(smallIntegerZero)
			}
			link = next
		}
	}

	for _, ptr := range obj.Pointers() {
		if !ptr.To().IsSmallInteger() {
			ptr.Update(smallIntegerZero)
		}
	}

	h.table.unlink(obj.Head().TableIndex())
	obj.Head().setTableIndex(0)
}

// free reclaims obj's class-table slot (if any) and accounts for its heap
// size. Go's own garbage collector reclaims the memory once nothing in
// this package still references obj; this method only undoes the
// bookkeeping this package layered on top (spec.md §4.7's Free).
func (h *Heap) free(obj Object) {
	if obj.Head().InClassTable() {
		h.classes.free(behaviorID(obj))
	}
	h.heapSize -= HeapSize(obj)
}
