package heap

import "testing"

// ---------------------------------------------------------------------------
// Collector tests. These exercise checkReachable/unlink/free directly rather
// than relying on GCStep's random sampling to land on a particular slot,
// keeping the outcome independent of the sampling order.
// ---------------------------------------------------------------------------

func TestCheckReachableTrueForRootedObject(t *testing.T) {
	h := NewHeap(Config{}, nil)
	obj := h.AllocateArray(0, AllocSnapshot)

	var root Ref
	root.InitRoot(FromHeader(obj.Head()))

	if !h.checkReachable(obj) {
		t.Error("an object with a root edge should be reachable")
	}
}

func TestCheckReachableFalseForUnreachableCycle(t *testing.T) {
	h := NewHeap(Config{}, nil)
	a := h.AllocateArray(1, AllocSnapshot)
	b := h.AllocateArray(1, AllocSnapshot)

	a.Elements[0].Update(FromHeader(b.Head()))
	b.Elements[0].Update(FromHeader(a.Head()))

	if h.checkReachable(a) {
		t.Error("a two-cycle with no root should not be reachable")
	}
}

func TestCheckReachableWeakArrayDoesNotPropagate(t *testing.T) {
	h := NewHeap(Config{}, nil)
	obj := h.AllocateArray(0, AllocSnapshot)
	weak := h.AllocateWeakArray(1, AllocSnapshot)
	weak.Elements[0].Update(FromHeader(obj.Head()))

	if h.checkReachable(obj) {
		t.Error("an object referenced only from a WeakArray should not be reachable")
	}
	if !obj.Head().IsWeakReferent() {
		t.Error("checkReachable should have flagged obj as a weak referent")
	}
}

func TestCheckReachableHandleRoot(t *testing.T) {
	h := NewHeap(Config{}, nil)
	obj := h.AllocateArray(0, AllocSnapshot)
	addr := FromHeader(obj.Head())

	scope := h.NewHandleScope()
	defer scope.Close()
	scope.Push(&addr)

	if !h.checkReachable(obj) {
		t.Error("a handle-rooted object should be reachable")
	}
}

func TestCheckReachableNilIdentityShortCircuits(t *testing.T) {
	h := NewHeap(Config{}, nil)
	interp := newFakeInterpreter(h)
	h.SetInterpreter(interp)

	if !h.checkReachable(interp.NilObj()) {
		t.Error("the interpreter's nil object should always be reachable by identity")
	}
}

func TestUnlinkNilsWeakReferentEdgesAndClearsTableIndex(t *testing.T) {
	h := NewHeap(Config{}, nil)
	interp := newFakeInterpreter(h)
	h.SetInterpreter(interp)

	target := h.AllocateArray(0, AllocSnapshot)
	weak := h.AllocateWeakArray(1, AllocSnapshot)
	weak.Elements[0].Update(FromHeader(target.Head()))

	if h.checkReachable(target) {
		t.Fatal("setup: target should be unreachable except through the WeakArray")
	}
	target.Head().SetWeakReferent(true)

	h.unlink(target)

	if weak.Elements[0].To() != FromHeader(interp.NilObj().Head()) {
		t.Error("unlink should retarget the WeakArray's element to the interpreter's nil object")
	}
	if target.Head().TableIndex() != 0 {
		t.Error("unlink should clear the unlinked object's table index")
	}
}

func TestUnlinkRoutesEphemeronKeyThroughFinalizer(t *testing.T) {
	h := NewHeap(Config{}, nil)
	key := h.AllocateArray(0, AllocSnapshot)
	finalizer := h.AllocateArray(0, AllocSnapshot)
	eph := h.AllocateEphemeron(AllocSnapshot)
	eph.Key.Update(FromHeader(key.Head()))
	eph.Finalizer.Update(FromHeader(finalizer.Head()))

	key.Head().SetWeakReferent(true)
	h.unlink(key)

	if eph.Key.To() != smallIntegerZero {
		t.Error("unlink should clear the ephemeron's Key once its key is unlinked")
	}
	drained := h.DrainFinalizers()
	if len(drained) != 1 || drained[0].Finalizer != FromHeader(finalizer.Head()) {
		t.Error("unlink should have queued the ephemeron's finalizer")
	}
}

func TestFreeReclaimsClassTableSlotByBehaviorID(t *testing.T) {
	h := NewHeap(Config{}, nil)
	cid := h.AllocateClassId()
	behavior := &Behavior{}
	behavior.Header.init(behavior, ClassIDFirstRegularObject, sizeUnitsForSlots(6))
	behavior.ClassIDSlot.Init(behavior, FromSmallInteger(int(cid)))
	h.register(behavior)
	h.RegisterClass(cid, FromHeader(&behavior.Header))

	h.free(behavior)

	reused, ok := h.classes.allocateFromFreeList()
	if !ok || reused != cid {
		t.Errorf("free() should return the Behavior's own descried cid (%d) to the free list, got (%d, %v)", cid, reused, ok)
	}
}

func TestGCStepOnAlmostEmptyHeapDoesNotPanic(t *testing.T) {
	h := NewHeap(Config{}, nil)
	h.GCStep() // table has only its reserved slot 0; must not call IntN(0).
}
