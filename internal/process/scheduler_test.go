package process

import (
	"testing"

	"github.com/rcornwell/iridium/internal/mmu"
	"github.com/rcornwell/iridium/internal/physmem"
)

// word16 packs a nibble-coded instruction the same way the cpu package
// does, kept local to avoid importing cpu's internal opcode constants
// from a different package's test.
func word16(op, n2, n3, n4 uint8) uint16 {
	return uint16(op)<<12 | uint16(n2)<<8 | uint16(n3)<<4 | uint16(n4)
}

func TestSchedulerRunsMovuiMovliAddiHaltProgram(t *testing.T) {
	mem := physmem.New(physmem.MinPages)
	pages := mmu.New(physmem.MinPages)
	table := NewTable()

	const (
		opMOVUI = 0xC
		opMOVLI = 0xD
		opADDI  = 0x3
	)
	program := []uint16{
		word16(opMOVUI, 1, 0x1, 0x2), // $g1 upper <- 0x12
		word16(opMOVLI, 1, 0x3, 0x4), // $g1 lower <- 0x34
		word16(opADDI, 2, 1, 1),      // $g2 <- $g1 + 1
		0xFFFF,
	}
	image := make([]byte, len(program)*2)
	for i, w := range program {
		image[2*i] = byte(w >> 8)
		image[2*i+1] = byte(w)
	}

	p, err := table.LoadProgram(1, image, pages, mem.Write)
	if err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}

	sched := NewScheduler(table, mem, pages, nil)
	if err := sched.RunAll(); err != nil {
		t.Fatalf("RunAll: %v", err)
	}

	if table.NumActive() != 0 {
		t.Errorf("NumActive() after RunAll = %d, want 0", table.NumActive())
	}
	if got := p.SavedRegs[1]; got != 0x1234 {
		t.Errorf("$g1 = 0x%X, want 0x1234", got)
	}
	if got := p.SavedRegs[2]; got != 0x1235 {
		t.Errorf("$g2 = 0x%X, want 0x1235", got)
	}
}

func TestLoadProgramRejectsDuplicateID(t *testing.T) {
	mem := physmem.New(physmem.MinPages)
	pages := mmu.New(physmem.MinPages)
	table := NewTable()
	image := []byte{0xFF, 0xFF}

	if _, err := table.LoadProgram(1, image, pages, mem.Write); err != nil {
		t.Fatalf("first LoadProgram: %v", err)
	}
	if _, err := table.LoadProgram(1, image, pages, mem.Write); err == nil {
		t.Error("second LoadProgram with same id: want error, got nil")
	}
}
