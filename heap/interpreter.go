package heap

// Interpreter is the contract a VM built on this heap must satisfy so the
// collector can find roots and stay in sync across a GC step. Grounded on
// original_source/vm/heap.h's forward-declared Interpreter and its call
// sites in heap.cc (interpreter_->RootPointers, ->ClearCache,
// ->nil_obj/true_obj/false_obj); expressed as a Go interface the way the
// teacher's own vm/object.go bridges the VM to Go-native collaborators
// through small interfaces rather than a base class.
//
// A Heap constructed without one (nil) still functions for allocation and
// GC, but CheckReachable's pointer-identity fast path for nil/true/false
// (spec.md §9 open question (c)) is then absent, and Become forwards only
// handles and heap objects. Refs made with InitRoot count as roots either
// way: CheckReachable recognizes them by their nil From().
type Interpreter interface {
	// RootPointers reports every Ref the interpreter itself owns outside
	// the object graph (globals, an object store, dispatch caches). The
	// heap does not retain the returned slice; Become walks it once to
	// forward any root that points at a corpse.
	RootPointers() []*Ref

	// StackPointers reports the Refs backing every live activation's
	// operand stack and temps that are not already reachable through the
	// Activation objects themselves (e.g. a native call stack shadow).
	// Most interpreters can return nil here once Activation objects are
	// linked into the graph properly; kept as a separate hook because the
	// original treats stack roots and heap roots as distinct concerns.
	StackPointers() []*Ref

	// ClearCache is invoked after each GCStep round that collected anything
	// with InClassTable set, and after every successful Become, so an
	// inline-cache keyed by class identity does not outlive the class it
	// cached.
	ClearCache()

	// NilObj, TrueObj, and FalseObj identify the three objects
	// CheckReachable treats as immediately reachable by pointer identity,
	// never by class id (spec.md §9 open question (c)) — these objects'
	// incoming lists are enormous in a running system, and walking them
	// on every GC round would be wasted work.
	NilObj() Object
	TrueObj() Object
	FalseObj() Object
}
