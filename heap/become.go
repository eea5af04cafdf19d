package heap

// Become atomically swaps the identity of every pair (old[i], new[i]):
// afterward every existing pointer to old[i] instead observes new[i],
// including old[i]'s identity hash and in-class-table status, and old[i]
// itself becomes a ForwardingCorpse. Grounded field-for-field on
// original_source/vm/heap.cc's BecomeForward (spec.md §4.9).
//
// Fails (returns false, no state changed) if the two slices differ in
// length or either contains a small integer, matching the original's
// pre-check pass before any mutation begins — the original scans the
// whole pair list for immediates before forwarding anything specifically
// so a failure never leaves a partial become in place.
func (h *Heap) Become(old, new []Value) bool {
	if len(old) != len(new) {
		return false
	}
	for i := range old {
		if old[i].IsSmallInteger() || new[i].IsSmallInteger() {
			return false
		}
	}

	for i := range old {
		forwarder := MustHeapObjectFromValue(old[i])
		forwardee := MustHeapObjectFromValue(new[i])

		forwardeeHead := forwardee.Head()
		forwarderHead := forwarder.Head()

		forwardeeHead.setIdentityHash(forwarderHead.IdentityHash())
		forwardeeHead.SetInClassTable(forwardeeHead.InClassTable() || forwarderHead.InClassTable())

		h.unlink(forwarder)

		// Rather than reinterpret forwarder's memory as a fresh
		// ForwardingCorpse::Layout the way the original does with placement
		// new (impossible to do safely in Go over an already-typed struct),
		// this mutates forwarder's existing Header in place and keeps the
		// rest of its concrete struct (unlink above has reset its
		// heap-valued slots to small-integer zero but not changed how many
		// there are). Its HeapSizeFromClass keeps working off those slots,
		// so no separate overflow-size cell is needed the way
		// ForwardingCorpse::Layout carries one.
		forwarderHead.setClassID(ClassIDForwardingCorpse)
		forwarderHead.setForwardTarget(FromHeader(forwardeeHead))
	}

	h.forwardClassIDs()
	h.forwardRoots()
	h.forwardHeap()
	h.mournClassTableForwarded()

	if h.interp != nil {
		h.interp.ClearCache()
	}

	return true
}

// forwardValue rewrites v if it currently points at a ForwardingCorpse,
// following the corpse's target exactly once (become never chains
// corpses onto other corpses).
func forwardValue(v Value) Value {
	if !v.IsHeapObject() {
		return v
	}
	obj := HeapObjectFromValue(v)
	if obj.Head().ClassID() != ClassIDForwardingCorpse {
		return v
	}
	target := obj.Head().forwardTarget()
	return target
}

func forwardPointer(ref *Ref) {
	newTo := forwardValue(ref.To())
	if newTo != ref.To() {
		ref.UpdateNoCheck(newTo)
	}
}

func (h *Heap) forwardRoots() {
	for i := 0; i < h.handlesSize; i++ {
		addr := h.handles[i]
		if addr == nil {
			continue
		}
		*addr = forwardValue(*addr)
	}

	if h.interp == nil {
		return
	}
	for _, ref := range h.interp.RootPointers() {
		forwardPointer(ref)
	}
	for _, ref := range h.interp.StackPointers() {
		forwardPointer(ref)
	}
}

func (h *Heap) forwardHeap() {
	for i := 1; i < h.table.len(); i++ {
		obj := h.table.at(i)
		if obj == nil {
			continue
		}
		h.forwardClassOf(obj)
		for _, ref := range obj.Pointers() {
			forwardPointer(ref)
		}
	}
}

// forwardClassOf rewrites obj's own class id if its class was itself
// become'd (original_source/vm/heap.cc's file-local ForwardClass).
func (h *Heap) forwardClassOf(obj Object) {
	oldClass := h.classes.at(obj.Head().ClassID())
	if !oldClass.IsHeapObject() {
		return
	}
	oldClassObj := HeapObjectFromValue(oldClass)
	if oldClassObj.Head().ClassID() != ClassIDForwardingCorpse {
		return
	}
	newClass := MustHeapObjectFromValue(oldClassObj.Head().forwardTarget())
	obj.Head().setClassID(behaviorID(newClass))
}

// forwardClassIDs reassigns class ids so that a become'd class keeps the
// numeric cid its old identity had (some cids, like SmallInteger's, are
// referenced by fixed constant elsewhere and can't be allowed to drift).
// unassigned ClassIDSlot is represented as smallIntegerZero (§ClassID 0
// is never a legal class id, so it is an unambiguous sentinel distinct
// from the interpreter's own nil object).
func (h *Heap) forwardClassIDs() {
	for oldCid := ClassIDFirstLegal; int(oldCid) < h.classes.len(); oldCid++ {
		slot := h.classes.at(oldCid)
		if !slot.IsHeapObject() {
			continue
		}
		oldClass := HeapObjectFromValue(slot)
		if oldClass.Head().ClassID() != ClassIDForwardingCorpse {
			continue
		}

		newClass := MustHeapObjectFromValue(oldClass.Head().forwardTarget())
		if newID := behaviorIDValue(newClass); newID != smallIntegerZero {
			h.classes.slots[newID.SmallInteger()] = slot
		}

		setBehaviorID(newClass, oldCid)
		h.classes.slots[oldCid] = FromHeader(newClass.Head())
	}
}

func (h *Heap) mournClassTableForwarded() {
	for cid := ClassIDFirstLegal; int(cid) < h.classes.len(); cid++ {
		slot := h.classes.at(cid)
		if !slot.IsHeapObject() {
			continue
		}
		if HeapObjectFromValue(slot).Head().ClassID() != ClassIDForwardingCorpse {
			continue
		}
		h.classes.free(cid)
	}
}

// behaviorID/behaviorIDValue/setBehaviorID reach into a Behavior's own
// ClassIDSlot field (Class/Metaclass embed Behavior; other Behaviors are
// used directly), matching original_source/vm/object.h's Behavior::id()/
// set_id() pair.
func behaviorIDValue(obj Object) Value {
	switch b := obj.(type) {
	case *Class:
		return b.ClassIDSlot.To()
	case *Metaclass:
		return b.ClassIDSlot.To()
	case *Behavior:
		return b.ClassIDSlot.To()
	default:
		return smallIntegerZero
	}
}

func behaviorID(obj Object) uint32 {
	v := behaviorIDValue(obj)
	if !v.IsSmallInteger() {
		return obj.Head().ClassID()
	}
	return uint32(v.SmallInteger())
}

func setBehaviorID(obj Object, cid uint32) {
	v := FromSmallInteger(int(cid))
	switch b := obj.(type) {
	case *Class:
		b.ClassIDSlot.UpdateNoCheck(v)
	case *Metaclass:
		b.ClassIDSlot.UpdateNoCheck(v)
	case *Behavior:
		b.ClassIDSlot.UpdateNoCheck(v)
	}
}
