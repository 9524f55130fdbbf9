package cpu

import (
	"testing"

	"github.com/rcornwell/iridium/internal/mmu"
	"github.com/rcornwell/iridium/internal/physmem"
	"github.com/rcornwell/iridium/internal/register"
)

func newContext(t *testing.T, program []uint16) *Context {
	t.Helper()
	mem := physmem.New(physmem.MinPages)
	pages := mmu.New(physmem.MinPages)
	ref, err := pages.Allocate(1, mmu.Code, 0)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	for i, w := range program {
		mem.Write(ref.PhysStart+uint32(i), w)
	}
	return &Context{
		PID:   1,
		PC:    0,
		Regs:  register.New(),
		Mem:   mem,
		Pages: pages,
	}
}

func word(op, a, b, c uint8) uint16 {
	return uint16(op)<<12 | uint16(a)<<8 | uint16(b)<<4 | uint16(c)
}

func TestMovuiMovliThenAddi(t *testing.T) {
	// MOVUI $g1,0x1,0x2 ; MOVLI $g1,0x3,0x4 ; ADDI $g2,$g1,1 ; HALT
	ctx := newContext(t, []uint16{
		word(OpMOVUI, 1, 0x1, 0x2),
		word(OpMOVLI, 1, 0x3, 0x4),
		word(OpADDI, 2, 1, 1),
		0xFFFF,
	})
	for i := 0; i < 3; i++ {
		outcome, err := Step(ctx)
		if err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
		if outcome == Retired {
			t.Fatalf("Step %d: unexpectedly retired", i)
		}
	}
	if got := ctx.Regs.Read16(1); got != 0x1234 {
		t.Errorf("$g1 = 0x%X, want 0x1234", got)
	}
	if got := ctx.Regs.Read16(2); got != 0x1235 {
		t.Errorf("$g2 = 0x%X, want 0x1235", got)
	}
	outcome, err := Step(ctx)
	if err != nil {
		t.Fatalf("final Step: %v", err)
	}
	if outcome != Retired {
		t.Error("expected retirement on 0xFFFF fetch")
	}
}

func TestHaltRetires(t *testing.T) {
	ctx := newContext(t, []uint16{uint16(OpHALT) << 8})
	outcome, err := Step(ctx)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if outcome != Retired {
		t.Error("HALT did not retire the process")
	}
}

func TestAddSetsCarryOnOverflow(t *testing.T) {
	ctx := newContext(t, []uint16{word(OpADD, 3, 1, 2)})
	ctx.Regs.Write(1, 0xFFFF)
	ctx.Regs.Write(2, 0x0001)
	if _, err := Step(ctx); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !ctx.Flags.C {
		t.Error("ADD overflow did not set carry")
	}
	if got := ctx.Regs.Read16(3); got != 0 {
		t.Errorf("$g3 = 0x%X, want 0", got)
	}
}

func TestDecodeErrorOnIllegalOpcode(t *testing.T) {
	ctx := newContext(t, []uint16{0xF900}) // 0xF9 is not an assigned extended opcode
	if _, err := Step(ctx); err == nil {
		t.Error("illegal extended opcode: want DecodeError, got nil")
	}
}

func TestStoreThenLoadRoundTrips(t *testing.T) {
	ctx := newContext(t, []uint16{
		word(OpSTORE, 1, 0, 0),
		word(OpLOAD, 2, 0, 0),
	})
	ctx.Regs.Write(register.AR, 0)
	ctx.Regs.Write(1, 0xBEEF)
	if _, err := Step(ctx); err != nil {
		t.Fatalf("STORE Step: %v", err)
	}
	if _, err := Step(ctx); err != nil {
		t.Fatalf("LOAD Step: %v", err)
	}
	if got := ctx.Regs.Read16(2); got != 0xBEEF {
		t.Errorf("$g2 = 0x%X, want 0xBEEF", got)
	}
}

func TestJumpLandsOnTarget(t *testing.T) {
	// JUMP is an extended opcode: word = 0xF2 in the high byte, ra/rb in
	// the low nibbles naming the registers holding the target's halves.
	ctx := newContext(t, []uint16{uint16(OpJUMP)<<8 | uint16(1)<<4 | uint16(2)})
	ctx.Regs.Write(1, 0) // target upper 16 bits
	ctx.Regs.Write(2, 5) // target lower 16 bits
	if _, err := Step(ctx); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if ctx.PC != 5 {
		t.Errorf("PC after JUMP = %d, want 5", ctx.PC)
	}
}
