package heap

import "testing"

// ---------------------------------------------------------------------------
// Ref / incoming-list tests
// ---------------------------------------------------------------------------

func TestRefUpdateSplicesOntoIncomingList(t *testing.T) {
	h := NewHeap(Config{}, nil)
	target := h.AllocateArray(0, AllocSnapshot)
	source := h.AllocateArray(1, AllocSnapshot)

	source.Elements[0].Update(FromHeader(target.Head()))

	head := target.Head().Incoming()
	if head.isEmpty() {
		t.Fatal("target's incoming list should not be empty after splicing a Ref onto it")
	}
	if head.next.owner != &source.Elements[0] {
		t.Error("incoming list's first entry should be the spliced Ref")
	}
}

func TestRefUpdateMovesBetweenLists(t *testing.T) {
	h := NewHeap(Config{}, nil)
	a := h.AllocateArray(0, AllocSnapshot)
	b := h.AllocateArray(0, AllocSnapshot)
	source := h.AllocateArray(1, AllocSnapshot)

	source.Elements[0].Update(FromHeader(a.Head()))
	if a.Head().Incoming().isEmpty() {
		t.Fatal("a should have an incoming edge")
	}

	source.Elements[0].Update(FromHeader(b.Head()))
	if !a.Head().Incoming().isEmpty() {
		t.Error("a's incoming list should be empty after the Ref retargeted to b")
	}
	if b.Head().Incoming().isEmpty() {
		t.Error("b should have gained the incoming edge")
	}
}

func TestRefUpdateToSmallIntegerUnlinksOnly(t *testing.T) {
	h := NewHeap(Config{}, nil)
	target := h.AllocateArray(0, AllocSnapshot)
	source := h.AllocateArray(1, AllocSnapshot)

	source.Elements[0].Update(FromHeader(target.Head()))
	source.Elements[0].Update(FromSmallInteger(9))

	if !target.Head().Incoming().isEmpty() {
		t.Error("target's incoming list should be empty once the Ref points at a small integer")
	}
	if source.Elements[0].To().SmallInteger() != 9 {
		t.Error("Ref should now report the small integer target")
	}
}

func TestRefInitRootHasNilFrom(t *testing.T) {
	var r Ref
	r.InitRoot(smallIntegerZero)
	if r.From() != nil {
		t.Error("InitRoot should leave From() nil, marking it a root edge")
	}
}
