package heap

import "testing"

// ---------------------------------------------------------------------------
// Value tagging tests
// ---------------------------------------------------------------------------

func TestFromSmallIntegerRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, -1, 42, -42, MaxSmallInteger, MinSmallInteger} {
		v := FromSmallInteger(n)
		if !v.IsSmallInteger() {
			t.Fatalf("FromSmallInteger(%d).IsSmallInteger() = false", n)
		}
		if v.IsHeapObject() {
			t.Fatalf("FromSmallInteger(%d).IsHeapObject() = true", n)
		}
		if got := v.SmallInteger(); got != n {
			t.Errorf("SmallInteger() = %d, want %d", got, n)
		}
	}
}

func TestFromSmallIntegerOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-range small integer")
		}
	}()
	FromSmallInteger(MaxSmallInteger + 1)
}

func TestTryFromSmallInteger(t *testing.T) {
	if _, ok := TryFromSmallInteger(MaxSmallInteger + 1); ok {
		t.Error("TryFromSmallInteger should fail out of range")
	}
	v, ok := TryFromSmallInteger(7)
	if !ok || v.SmallInteger() != 7 {
		t.Errorf("TryFromSmallInteger(7) = (%v, %v)", v, ok)
	}
}

func TestZeroValueIsSmallIntegerZero(t *testing.T) {
	var v Value
	if v != smallIntegerZero {
		t.Fatal("Go zero value of Value must equal smallIntegerZero")
	}
	if !v.IsSmallInteger() || v.SmallInteger() != 0 {
		t.Error("zero Value should decode as small integer 0")
	}
}

func TestHeapObjectFromValue(t *testing.T) {
	h := NewHeap(Config{}, nil)
	arr := h.AllocateArray(3, AllocSnapshot)

	v := FromHeader(arr.Head())
	if !v.IsHeapObject() {
		t.Fatal("FromHeader should produce a heap-tagged Value")
	}
	if HeapObjectFromValue(v) != Object(arr) {
		t.Error("HeapObjectFromValue did not recover the original object")
	}
}

func TestClassIDOf(t *testing.T) {
	if ClassIDOf(FromSmallInteger(5)) != ClassIDSmallInteger {
		t.Error("ClassIDOf(small integer) should be ClassIDSmallInteger")
	}

	h := NewHeap(Config{}, nil)
	arr := h.AllocateArray(0, AllocSnapshot)
	if ClassIDOf(FromHeader(arr.Head())) != ClassIDArray {
		t.Error("ClassIDOf(array) should be ClassIDArray")
	}
}
