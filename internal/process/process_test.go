package process

import (
	"testing"

	"github.com/rcornwell/iridium/internal/mmu"
	"github.com/rcornwell/iridium/internal/physmem"
)

func TestLoadProgramReservesHeapAndStack(t *testing.T) {
	mem := physmem.New(physmem.MinPages)
	pages := mmu.New(physmem.MinPages)
	table := NewTable()

	image := []byte{0x00, 0x01, 0xFF, 0xFF}
	p, err := table.LoadProgram(7, image, pages, mem.Write)
	if err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}
	if p.HeapTree == nil {
		t.Fatal("HeapTree not initialized")
	}
	if p.HeapTree.Size() != DefaultHeapSize {
		t.Errorf("HeapTree.Size() = %d, want %d", p.HeapTree.Size(), DefaultHeapSize)
	}
	if p.StackBase <= p.HeapBase {
		t.Errorf("StackBase (%d) should be above HeapBase (%d)", p.StackBase, p.HeapBase)
	}
}

func TestLoadProgramRejectsWhenTableFull(t *testing.T) {
	mem := physmem.New(physmem.MinPages)
	pages := mmu.New(physmem.MinPages)
	table := NewTable()
	image := []byte{0xFF, 0xFF}

	for i := 0; i < MaxProcesses; i++ {
		if _, err := table.LoadProgram(uint16(i), image, pages, mem.Write); err != nil {
			t.Fatalf("LoadProgram #%d: %v", i, err)
		}
	}
	if _, err := table.LoadProgram(MaxProcesses, image, pages, mem.Write); err == nil {
		t.Error("LoadProgram past MaxProcesses: want error, got nil")
	}
}

func TestRetireFreesFrames(t *testing.T) {
	mem := physmem.New(physmem.MinPages)
	pages := mmu.New(physmem.MinPages)
	table := NewTable()
	image := []byte{0xFF, 0xFF}

	p, err := table.LoadProgram(3, image, pages, mem.Write)
	if err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}
	table.Retire(p.ID, pages)
	if table.Get(3) != nil {
		t.Error("process still present after Retire")
	}
	if _, terr := pages.Translate(3, 0); terr == nil {
		t.Error("Translate after Retire: want error, got nil")
	}
}
