package mmu

import "testing"

func TestAllocateTranslateRoundTrip(t *testing.T) {
	table := New(16)
	ref, err := table.Allocate(1, Data, 0)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	for k := uint32(0); k < PageSize; k += 511 {
		got, err := table.Translate(1, ref.LogicalStart+k)
		if err != nil {
			t.Fatalf("Translate(%d): %v", k, err)
		}
		if want := ref.PhysStart + k; got != want {
			t.Errorf("Translate(1,%d) = 0x%X, want 0x%X", ref.LogicalStart+k, got, want)
		}
	}
}

func TestTranslateUnmappedReturnsError(t *testing.T) {
	table := New(4)
	if _, err := table.Translate(9, 0); err == nil {
		t.Error("Translate on unmapped pid: want error, got nil")
	}
}

func TestAllocateExhaustionReturnsResourceError(t *testing.T) {
	table := New(2)
	if _, err := table.Allocate(1, Code, 0); err != nil {
		t.Fatalf("first Allocate: %v", err)
	}
	if _, err := table.Allocate(1, Code, PageSize); err != nil {
		t.Fatalf("second Allocate: %v", err)
	}
	if _, err := table.Allocate(1, Code, 2*PageSize); err == nil {
		t.Error("Allocate past capacity: want error, got nil")
	}
}

func TestReleaseReturnsFramesToFree(t *testing.T) {
	table := New(4)
	ref, _ := table.Allocate(2, Heap, 0)
	table.Release(2)
	if table.entries[ref.FrameIndex].Allocated {
		t.Error("frame still allocated after Release")
	}
	if table.entries[ref.FrameIndex].Kind != Free {
		t.Errorf("Kind after Release = %v, want Free", table.entries[ref.FrameIndex].Kind)
	}
	if _, err := table.Translate(2, ref.LogicalStart); err == nil {
		t.Error("Translate after Release: want error, got nil")
	}
}

func TestReclassifyChangesKindNotData(t *testing.T) {
	table := New(4)
	ref, _ := table.Allocate(3, Heap, 0)
	if !table.Reclassify(3, ref.LogicalStart, Stack) {
		t.Fatal("Reclassify returned false")
	}
	if table.entries[ref.FrameIndex].Kind != Stack {
		t.Errorf("Kind after Reclassify = %v, want Stack", table.entries[ref.FrameIndex].Kind)
	}
}

func TestTwoProcessesDoNotAlias(t *testing.T) {
	table := New(4)
	refA, _ := table.Allocate(1, Data, 0)
	refB, _ := table.Allocate(2, Data, 0)
	if refA.PhysStart == refB.PhysStart {
		t.Fatal("two distinct allocations share a physical frame")
	}
	gotA, _ := table.Translate(1, 0)
	gotB, _ := table.Translate(2, 0)
	if gotA == gotB {
		t.Error("same logical address 0 for two pids maps to the same physical address")
	}
}
