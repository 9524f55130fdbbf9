/*
 * Copyright 2026, Iridium project contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package cpu decodes one nibble-coded instruction word at a time and
// executes it against a register file, ALU flag latch, and physical
// memory reached through the MMU. It holds no process-table state of
// its own; the scheduler in package process drives it one Step per
// instruction and is responsible for burst accounting and save/restore
// at process boundaries.
package cpu

import (
	"github.com/rcornwell/iridium/internal/alu"
	"github.com/rcornwell/iridium/internal/ierr"
	"github.com/rcornwell/iridium/internal/mmu"
	"github.com/rcornwell/iridium/internal/physmem"
	"github.com/rcornwell/iridium/internal/register"
)

// SyscallHandler dispatches opcode 0xFC. It is supplied by package
// syscall; cpu never imports it directly, and syscall never imports
// cpu either: both sides share only the register, physmem, and mmu
// types named in the method signature.
type SyscallHandler interface {
	Dispatch(pid uint16, code uint8, regs *register.File, mem *physmem.Memory, pages *mmu.Table) error
}

// Outcome reports what happened after a single Step.
type Outcome int

const (
	Continue Outcome = iota
	Retired
)

// Context bundles everything one instruction needs: the current
// process's register file and saved PC/flags, and the shared
// machine-wide collaborators (memory, MMU, syscalls).
type Context struct {
	PID      uint16
	PC       uint32
	Regs     *register.File
	Flags    alu.Flags
	Atom     bool
	Mem      *physmem.Memory
	Pages    *mmu.Table
	Syscalls SyscallHandler
}

// Step fetches and executes the instruction at ctx.PC, advances PC,
// and reports whether the process retired. A 0x0000 or 0xFFFF fetch
// retires the process before any decode is attempted, matching the
// executor's halt-sentinel check ahead of dispatch.
func Step(ctx *Context) (Outcome, error) {
	phys, err := ctx.Pages.Translate(ctx.PID, ctx.PC)
	if err != nil {
		return Continue, err
	}
	word := ctx.Mem.Read(phys)
	if word == 0x0000 || word == 0xFFFF {
		return Retired, nil
	}

	n1 := uint8(word>>12) & 0xF
	n2 := uint8(word>>8) & 0xF
	n3 := uint8(word>>4) & 0xF
	n4 := uint8(word) & 0xF

	err = dispatch(ctx, word, n1, n2, n3, n4)
	if err != nil {
		if IsHalt(err) {
			return Retired, nil
		}
		return Continue, err
	}
	// The executor post-increments PC after every instruction,
	// unconditionally. JUMP/JAL land on target-1 and branches land
	// directly on their operand so that this universal +1 produces the
	// intended destination.
	ctx.PC++
	return Continue, nil
}

// dispatch executes one decoded instruction. The executor applies a
// universal PC+1 after every instruction, including jumps and taken
// branches; JUMP/JAL therefore land on target-1 and branches land
// directly on their operand so that the following +1 produces the
// intended destination (spec's adjustment-plus-increment identity).
func dispatch(ctx *Context, word uint16, n1, n2, n3, n4 uint8) error {
	regs := ctx.Regs

	if n1 != 0xF {
		rd, ra, rb := int(n2), int(n3), int(n4)
		switch n1 {
		case OpNOP:
		case OpADD:
			result, flags := alu.Add(regs.Read16(ra), regs.Read16(rb))
			regs.Write(rd, uint32(result))
			ctx.Flags = flags
		case OpSUB:
			result, flags := alu.Sub(regs.Read16(ra), regs.Read16(rb))
			regs.Write(rd, uint32(result))
			ctx.Flags = flags
		case OpADDI:
			result, flags := alu.Add(regs.Read16(ra), uint16(rb))
			regs.Write(rd, uint32(result))
			ctx.Flags = flags
		case OpSUBI:
			result, flags := alu.Sub(regs.Read16(ra), uint16(rb))
			regs.Write(rd, uint32(result))
			ctx.Flags = flags
		case OpSLL:
			regs.Write(rd, uint32(alu.Shl(regs.Read16(ra), regs.Read16(rb))))
		case OpSRL:
			regs.Write(rd, uint32(alu.Shr(regs.Read16(ra), regs.Read16(rb))))
		case OpSRA:
			regs.Write(rd, uint32(alu.Sar(regs.Read16(ra), regs.Read16(rb))))
		case OpNAND:
			regs.Write(rd, uint32(alu.Nand(regs.Read16(ra), regs.Read16(rb))))
		case OpOR:
			regs.Write(rd, uint32(alu.Or(regs.Read16(ra), regs.Read16(rb))))
		case OpLOAD:
			addr := effectiveAddress(ctx, ra, rb)
			phys, terr := ctx.Pages.Translate(ctx.PID, addr)
			if terr != nil {
				return terr
			}
			regs.Write(rd, uint32(ctx.Mem.Read(phys)))
		case OpSTORE:
			addr := effectiveAddress(ctx, ra, rb)
			phys, terr := ctx.Pages.Translate(ctx.PID, addr)
			if terr != nil {
				return terr
			}
			ctx.Mem.Write(phys, regs.Read16(rd))
		case OpMOVUI:
			v := regs.Read16(rd)
			v = (v & 0x00FF) | uint16(n3)<<12 | uint16(n4)<<8
			regs.Write(rd, uint32(v))
		case OpMOVLI:
			v := regs.Read16(rd)
			v = (v & 0xFF00) | uint16(n3)<<4 | uint16(n4)
			regs.Write(rd, uint32(v))
		default:
			return &ierr.DecodeError{Word: word, PC: ctx.PC}
		}
		return nil
	}

	// Extended, 8-bit opcode in (n1,n2).
	op := uint16(n1)<<4 | uint16(n2)
	ra, rb := int(n3), int(n4)
	switch op {
	case OpADDC:
		var c uint16
		if ctx.Flags.C {
			c = 1
		}
		result, flags := alu.Add(regs.Read16(rb), c)
		regs.Write(ra, uint32(result))
		ctx.Flags = flags
	case OpSUBC:
		var c uint16
		if ctx.Flags.C {
			c = 1
		}
		result, flags := alu.Sub(regs.Read16(rb), c)
		regs.Write(ra, uint32(result))
		ctx.Flags = flags
	case OpJUMP:
		target := uint32(regs.Read16(ra))<<16 | uint32(regs.Read16(rb))
		ctx.PC = target - 1
	case OpJAL:
		target := uint32(regs.Read16(ra))<<16 | uint32(regs.Read16(rb))
		regs.Write(register.RA, ctx.PC)
		ctx.PC = target - 1
	case OpCMP:
		ctx.Flags = alu.Cmp(regs.Read16(rb), regs.Read16(ra))
	case OpBEQ:
		if ctx.Flags.Z {
			ctx.PC = uint32(regs.Read16(ra))
		}
	case OpBNE:
		if !ctx.Flags.Z {
			ctx.PC = uint32(regs.Read16(ra))
		}
	case OpBLT:
		if ctx.Flags.N {
			ctx.PC = uint32(regs.Read16(ra))
		}
	case OpBGT:
		if !ctx.Flags.N && !ctx.Flags.Z {
			ctx.PC = uint32(regs.Read16(ra))
		}
	case OpSYSCALL:
		code := uint8(n3)<<4 | uint8(n4)
		if ctx.Syscalls == nil {
			return &ierr.DecodeError{Word: word, PC: ctx.PC}
		}
		if serr := ctx.Syscalls.Dispatch(ctx.PID, code, regs, ctx.Mem, ctx.Pages); serr != nil {
			return serr
		}
	case OpATOM:
		ctx.Atom = !ctx.Atom
	case OpHALT:
		return haltSentinel
	default:
		return &ierr.DecodeError{Word: word, PC: ctx.PC}
	}
	return nil
}

// haltSentinel signals HALT to the caller without going through the
// ierr fatal-error path: HALT is a normal process-retirement trigger,
// not a decode failure.
var haltSentinel = &haltError{}

type haltError struct{}

func (*haltError) Error() string { return "halt" }

// IsHalt reports whether err is the sentinel Step returns for opcode
// 0xFF.
func IsHalt(err error) bool {
	_, ok := err.(*haltError)
	return ok
}

// effectiveAddress concatenates the upper-address latch $ar with
// ra+rb, per LOAD/STORE's addressing mode.
func effectiveAddress(ctx *Context, ra, rb int) uint32 {
	upper := ctx.Regs.Read16(register.AR)
	lower := ctx.Regs.Read16(ra) + ctx.Regs.Read16(rb)
	return uint32(upper)<<16 | uint32(lower)
}
