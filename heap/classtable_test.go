package heap

import "testing"

// ---------------------------------------------------------------------------
// Class table tests
// ---------------------------------------------------------------------------

func TestClassTableGrowsAndFreeListRoundTrips(t *testing.T) {
	ct := newClassTable(int(ClassIDFirstRegularObject))

	first := ct.allocateByGrowing()
	second := ct.allocateByGrowing()
	if first == second {
		t.Fatal("allocateByGrowing should never repeat a cid without a free")
	}

	ct.free(first)
	reused, ok := ct.allocateFromFreeList()
	if !ok || reused != first {
		t.Errorf("allocateFromFreeList = (%d, %v), want (%d, true)", reused, ok, first)
	}

	_, ok = ct.allocateFromFreeList()
	if ok {
		t.Error("free list should be empty after reclaiming its only entry")
	}
}

func TestClassTableRegisterAndAt(t *testing.T) {
	ct := newClassTable(int(ClassIDFirstRegularObject))
	cid := ct.allocateByGrowing()
	v := FromSmallInteger(99)
	ct.registerClass(cid, v)
	if ct.at(cid) != v {
		t.Errorf("at(%d) = %v, want %v", cid, ct.at(cid), v)
	}
}

func TestClassTableAtOutOfRangeIsZero(t *testing.T) {
	ct := newClassTable(int(ClassIDFirstRegularObject))
	if ct.at(9999) != smallIntegerZero {
		t.Error("at() past the table length should report smallIntegerZero")
	}
}
