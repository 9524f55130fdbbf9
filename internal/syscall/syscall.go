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

// Package syscall implements the twenty numbered syscalls reachable
// from opcode 0xFC. It depends on the heap, fat16, and console
// packages but never on cpu, so cpu.SyscallHandler can be satisfied
// without an import cycle.
package syscall

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rcornwell/iridium/internal/console"
	"github.com/rcornwell/iridium/internal/fat16"
	"github.com/rcornwell/iridium/internal/heap"
	"github.com/rcornwell/iridium/internal/ierr"
	"github.com/rcornwell/iridium/internal/mmu"
	"github.com/rcornwell/iridium/internal/physmem"
	"github.com/rcornwell/iridium/internal/register"
)

// Numeric syscall codes, per the opcode-0xFC code table.
const (
	PrintInt    = 1
	PrintFloat  = 2
	PrintString = 3
	ReadInt     = 4
	ReadFloat   = 5
	ReadString  = 6
	HeapAlloc   = 7
	FileOpen    = 8
	FileRead    = 9
	FileWrite   = 10
	FileClose   = 11
	MIDIOut     = 12
	TimeNow     = 13
	Sleep       = 14
	SeedRNG     = 15
	RandomInt   = 16
	RandomFloat = 17
	PrintHex    = 18
	PrintUint   = 19
	Brk         = 20
)

// Dispatcher implements cpu.SyscallHandler. It owns the console I/O
// sink, the open-file table, and the RNG state; process heaps are
// reached through the Heaps and HeapBase maps, keyed by pid, which
// point at trees owned by each Process record.
type Dispatcher struct {
	Console  console.Console
	Files    *fat16.FileSystem
	Heaps    map[uint16]*heap.Tree
	HeapBase map[uint16]uint32
	rng      *rand.Rand
	stdin    *bufio.Reader
}

// New builds a Dispatcher with empty Heaps/HeapBase maps. The caller
// fills them as it loads each process; entries are not removed when a
// process retires.
func New(con console.Console, files *fat16.FileSystem) *Dispatcher {
	return &Dispatcher{
		Console:  con,
		Files:    files,
		Heaps:    map[uint16]*heap.Tree{},
		HeapBase: map[uint16]uint32{},
		rng:      rand.New(rand.NewSource(1)),
		stdin:    bufio.NewReader(con.Stdin()),
	}
}

func pack32(hi, lo uint16) uint32  { return uint32(hi)<<16 | uint32(lo) }
func unpack32(v uint32) (uint16, uint16) { return uint16(v >> 16), uint16(v) }

// readString reads a NUL-terminated string starting at a logical
// address, translating each word through pages for pid.
func readString(mem *physmem.Memory, pages *mmu.Table, pid uint16, logical uint32) (string, error) {
	var out []byte
	for {
		phys, err := pages.Translate(pid, logical)
		if err != nil {
			return "", err
		}
		w := mem.Read(phys)
		if w == 0 {
			break
		}
		out = append(out, byte(w>>8), byte(w))
		logical++
		if len(out) > 1<<20 {
			return "", &ierr.ResourceError{Resource: "string too long"}
		}
	}
	// Trim a trailing pad byte introduced by packing two chars per word
	// when the string length is odd.
	for len(out) > 0 && out[len(out)-1] == 0 {
		out = out[:len(out)-1]
	}
	return string(out), nil
}

// Dispatch executes one syscall. Unknown codes are fatal, matching
// "unknown codes abort the emulator".
//
// FileRead/FileWrite/FileClose (9-11) need a register for the open
// file handle distinct from the byte count and the destination
// address, which the code table alone doesn't provide room for: the
// handle is $g6, the byte count is $g7, and the destination/source
// address is ($ar, $g9), matching the $ar+low-register addressing
// PrintString and ReadString already use.
func (d *Dispatcher) Dispatch(pid uint16, code uint8, regs *register.File, mem *physmem.Memory, pages *mmu.Table) error {
	g6, g7, g8, g9 := 6, 7, 8, 9
	switch code {
	case PrintInt:
		v := pack32(regs.Read16(g8), regs.Read16(g9))
		fmt.Fprintf(d.Console.Stdout(), "%d", int32(v))
	case PrintFloat:
		bits := pack32(regs.Read16(g8), regs.Read16(g9))
		fmt.Fprintf(d.Console.Stdout(), "%g", math.Float32frombits(bits))
	case PrintString:
		logical := pack32(regs.Read16(register.AR), regs.Read16(g9))
		s, err := readString(mem, pages, pid, logical)
		if err != nil {
			return err
		}
		fmt.Fprint(d.Console.Stdout(), s)
	case ReadInt:
		var v int32
		if _, err := fmt.Fscan(d.stdin, &v); err != nil {
			v = 0
		}
		hi, lo := unpack32(uint32(v))
		regs.Write(g8, uint32(hi))
		regs.Write(g9, uint32(lo))
	case ReadFloat:
		var v float32
		if _, err := fmt.Fscan(d.stdin, &v); err != nil {
			v = 0
		}
		hi, lo := unpack32(math.Float32bits(v))
		regs.Write(g8, uint32(hi))
		regs.Write(g9, uint32(lo))
	case ReadString:
		n := regs.Read16(g8)
		logical := pack32(regs.Read16(register.AR), regs.Read16(g9))
		buf := make([]byte, n)
		if _, err := d.stdin.Read(buf); err != nil && n > 0 {
			return &ierr.IOError{Op: "read string", Err: err}
		}
		if err := writeBytes(mem, pages, pid, logical, buf); err != nil {
			return err
		}
	case HeapAlloc:
		size := pack32(regs.Read16(g8), regs.Read16(g9))
		tree := d.Heaps[pid]
		if tree == nil {
			regs.Write(g8, 0xFFFFFFFF)
			regs.Write(g9, 0xFFFFFFFF)
			break
		}
		addr, err := tree.Allocate(size)
		if err != nil {
			regs.Write(g8, 0xFFFFFFFF)
			regs.Write(g9, 0xFFFFFFFF)
			break
		}
		hi, lo := unpack32(addr)
		regs.Write(g8, uint32(hi))
		regs.Write(g9, uint32(lo))
	case FileOpen:
		logical := pack32(regs.Read16(g8), regs.Read16(g9))
		name, err := readString(mem, pages, pid, logical)
		if err != nil {
			return err
		}
		handle, err := d.Files.Open(name)
		if err != nil {
			regs.Write(g8, 0xFFFFFFFF)
			regs.Write(g9, 0xFFFFFFFF)
			break
		}
		hi, lo := unpack32(uint32(handle))
		regs.Write(g8, uint32(hi))
		regs.Write(g9, uint32(lo))
	case FileRead:
		handle := fat16.Handle(regs.Read16(g6))
		n := int(regs.Read16(g7))
		logical := pack32(regs.Read16(register.AR), regs.Read16(g9))
		buf := make([]byte, n)
		got, _ := d.Files.Read(handle, buf)
		if err := writeBytes(mem, pages, pid, logical, buf[:got]); err != nil {
			return err
		}
	case FileWrite:
		// Read-only image: the handle and byte count are accepted under
		// the same register convention as FileRead, but no bytes are
		// ever persisted.
		_ = fat16.Handle(regs.Read16(g6))
		_ = regs.Read16(g7)
	case FileClose:
		handle := fat16.Handle(regs.Read16(g6))
		d.Files.Close(handle)
	case MIDIOut:
		d.Console.MIDI(uint8(regs.Read16(g9)))
	case TimeNow:
		now := time.Now().Unix()
		hi, lo := unpack32(uint32(now))
		regs.Write(g8, uint32(hi))
		regs.Write(g9, uint32(lo))
	case Sleep:
		ms := pack32(regs.Read16(g8), regs.Read16(g9))
		time.Sleep(time.Duration(ms) * time.Millisecond)
	case SeedRNG:
		seed := pack32(regs.Read16(g8), regs.Read16(g9))
		d.rng = rand.New(rand.NewSource(int64(seed)))
	case RandomInt:
		v := d.rng.Int31()
		hi, lo := unpack32(uint32(v))
		regs.Write(g8, uint32(hi))
		regs.Write(g9, uint32(lo))
	case RandomFloat:
		v := d.rng.Float32()
		hi, lo := unpack32(math.Float32bits(v))
		regs.Write(g8, uint32(hi))
		regs.Write(g9, uint32(lo))
	case PrintHex:
		v := pack32(regs.Read16(g8), regs.Read16(g9))
		fmt.Fprintf(d.Console.Stdout(), "%X", v)
	case PrintUint:
		v := pack32(regs.Read16(g8), regs.Read16(g9))
		fmt.Fprintf(d.Console.Stdout(), "%d", v)
	case Brk:
		offset := int32(pack32(regs.Read16(g8), regs.Read16(g9)))
		if !d.brk(pid, offset, pages) {
			return &ierr.BrkError{PID: pid, Offset: offset}
		}
	default:
		return &ierr.UnknownSyscallError{Code: code}
	}
	return nil
}

// brk reclassifies the PTE at the heap/stack boundary, growing the
// heap into the stack (positive offset) or the reverse (negative),
// without moving any data.
func (d *Dispatcher) brk(pid uint16, pages int32, table *mmu.Table) bool {
	base, ok := d.HeapBase[pid]
	if !ok {
		return false
	}
	entries := table.Entries()
	found, boundary := false, uint32(0)
	for _, e := range entries {
		if e.ProcessID != pid || !e.Allocated || e.LogicalStart < base {
			continue
		}
		// The lowest stack page and the highest heap page sit on the boundary.
		if pages >= 0 && e.Kind == mmu.Stack && (!found || e.LogicalStart < boundary) {
			found, boundary = true, e.LogicalStart
		}
		if pages < 0 && e.Kind == mmu.Heap && (!found || e.LogicalStart > boundary) {
			found, boundary = true, e.LogicalStart
		}
	}
	if !found {
		return false
	}
	if pages >= 0 {
		return table.Reclassify(pid, boundary, mmu.Heap)
	}
	return table.Reclassify(pid, boundary, mmu.Stack)
}

func writeBytes(mem *physmem.Memory, pages *mmu.Table, pid uint16, logical uint32, buf []byte) error {
	for i := 0; i < len(buf); i += 2 {
		var w uint16
		if i+1 < len(buf) {
			w = binary.BigEndian.Uint16(buf[i : i+2])
		} else {
			w = uint16(buf[i]) << 8
		}
		phys, err := pages.Translate(pid, logical)
		if err != nil {
			return err
		}
		mem.Write(phys, w)
		logical++
	}
	return nil
}
