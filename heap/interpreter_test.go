package heap

// fakeInterpreter is a minimal Interpreter used across this package's
// tests: nil/true/false are ordinary heap objects (identified only by
// pointer identity, per spec.md §9 open question (c) — no dedicated
// UndefinedObject/Boolean layout is needed to exercise that rule), and
// RootPointers/StackPointers return whatever the test wired up.
type fakeInterpreter struct {
	nilObj, trueObj, falseObj Object
	roots, stack              []*Ref
	clearCacheCalls           int
}

func newFakeInterpreter(h *Heap) *fakeInterpreter {
	return &fakeInterpreter{
		nilObj:   h.AllocateArray(0, AllocSnapshot),
		trueObj:  h.AllocateArray(0, AllocSnapshot),
		falseObj: h.AllocateArray(0, AllocSnapshot),
	}
}

func (f *fakeInterpreter) RootPointers() []*Ref  { return f.roots }
func (f *fakeInterpreter) StackPointers() []*Ref { return f.stack }
func (f *fakeInterpreter) ClearCache()           { f.clearCacheCalls++ }
func (f *fakeInterpreter) NilObj() Object        { return f.nilObj }
func (f *fakeInterpreter) TrueObj() Object       { return f.trueObj }
func (f *fakeInterpreter) FalseObj() Object      { return f.falseObj }
