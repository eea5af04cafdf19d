package heap

// This file carries the two "weak" shapes spec.md §4.8 asks for beyond a
// plain WeakArray, whose own non-propagation is handled directly in
// gc.go's checkReachable/unlink (a WeakArray-sourced incoming edge never
// marks its source, so it never keeps its elements alive, and Unlink nils
// every element once the referent goes). Ephemerons need one more rule
// Hayes' construction calls out specifically: the Key edge is weak, but
// Value and Finalizer are only cleared (not kept alive independently of
// the object graph) once the Key is confirmed unreachable through some
// other path. original_source/vm/object.h declares Ephemeron's three
// fields uniformly as Ref/*Object*/, with no marker distinguishing Key
// from Value/Finalizer at the storage level — the distinction here is
// purely at the collector's decision points, identified by comparing Ref
// identity against &eph.Key.

// isEphemeronKeyRef reports whether ref is exactly source's Key slot (as
// opposed to its Value or Finalizer slot, which are ordinary strong edges
// once the Ephemeron itself is reachable).
func isEphemeronKeyRef(source Object, ref *Ref) bool {
	eph, ok := source.(*Ephemeron)
	if !ok {
		return false
	}
	return ref == &eph.Key
}

// FinalizerEntry is a completed ephemeron: its key has been proven
// unreachable, and Finalizer (if any) is queued for the interpreter to
// run with oldValue.
type FinalizerEntry struct {
	Finalizer Value
	OldValue  Value
}

// finalizeEphemeron clears eph's Key and Value, matching the ephemeron
// contract's "the pair vanishes together" rule, and enqueues its
// Finalizer (if one was set) with the value that is about to disappear.
// Called from unlink when the collector proves the Key is otherwise
// unreachable (spec.md §4.8).
func (h *Heap) finalizeEphemeron(eph *Ephemeron) {
	oldValue := eph.Value.To()
	finalizer := eph.Finalizer.To()

	eph.Key.UpdateNoCheck(smallIntegerZero)
	eph.Value.UpdateNoCheck(smallIntegerZero)

	if finalizer.IsHeapObject() {
		h.finalizers = append(h.finalizers, FinalizerEntry{Finalizer: finalizer, OldValue: oldValue})
	}
}

// DrainFinalizers hands the caller every finalizer queued since the last
// call, clearing the queue. A VM's message loop calls this between GC
// steps (or on its own schedule) to actually run the finalizer objects;
// running interpreter bytecode is out of this package's scope, so it only
// hands back the (finalizer, old value) pairs.
func (h *Heap) DrainFinalizers() []FinalizerEntry {
	drained := h.finalizers
	h.finalizers = nil
	return drained
}
