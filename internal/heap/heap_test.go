package heap

import "testing"

func TestAllocateZeroFails(t *testing.T) {
	tr := New(0, 1024)
	if _, err := tr.Allocate(0); err == nil {
		t.Error("Allocate(0): want error, got nil")
	}
}

func TestAllocateLargerThanRootFails(t *testing.T) {
	tr := New(0, 1024)
	if _, err := tr.Allocate(2048); err == nil {
		t.Error("Allocate(2048) on 1024-byte tree: want error, got nil")
	}
}

func TestAllocatePrefersLeft(t *testing.T) {
	tr := New(0, 256)
	a, err := tr.Allocate(64)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if a != 0 {
		t.Errorf("first allocation start = %d, want 0 (leftmost)", a)
	}
}

func TestNoOverlapAcrossAllocations(t *testing.T) {
	tr := New(0, 256)
	seen := map[uint32]bool{}
	for i := 0; i < 4; i++ {
		addr, err := tr.Allocate(64)
		if err != nil {
			t.Fatalf("Allocate #%d: %v", i, err)
		}
		if seen[addr] {
			t.Fatalf("address %d allocated twice", addr)
		}
		seen[addr] = true
	}
	if _, err := tr.Allocate(64); err == nil {
		t.Error("5th Allocate(64) on a 256-byte tree: want error, got nil")
	}
}

func TestFreeAllCoalescesToSingleRoot(t *testing.T) {
	tr := New(0, 256)
	var addrs []uint32
	for i := 0; i < 4; i++ {
		a, err := tr.Allocate(64)
		if err != nil {
			t.Fatalf("Allocate #%d: %v", i, err)
		}
		addrs = append(addrs, a)
	}
	for _, a := range addrs {
		if !tr.Free(a) {
			t.Fatalf("Free(%d) failed", a)
		}
	}
	if !tr.IsSingleFreeRoot() {
		t.Error("tree did not coalesce back to a single free root after freeing everything")
	}
}

func TestFreeUnknownAddressFails(t *testing.T) {
	tr := New(0, 256)
	if tr.Free(999) {
		t.Error("Free on never-allocated address: want false, got true")
	}
}

func TestAllocateExactlyHalfSplitsOnce(t *testing.T) {
	tr := New(0, 128)
	a, err := tr.Allocate(64)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	b, err := tr.Allocate(64)
	if err != nil {
		t.Fatalf("second Allocate: %v", err)
	}
	if a == b {
		t.Fatal("two 64-byte allocations from a 128-byte tree returned the same address")
	}
}
