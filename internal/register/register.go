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

// Package register implements the Iridium register file: sixteen machine
// words, register 0 wired to a constant zero sink, and a 12-15 "address
// wide" tier that keeps the full 32 bits a 16-bit general register would
// truncate.
package register

// Count is the number of registers in the file.
const Count = 16

// First address-wide register. 12 ($ar), 13 ($sp), 14 ($fp), 15 ($ra/pc).
const AddrWideStart = 12

// Named address-wide indices.
const (
	AR = 12 // upper-address latch
	SP = 13 // stack pointer
	FP = 14 // frame pointer
	RA = 15 // return address, written by JAL
)

// File is the register bank owned by whichever process context currently
// holds the CPU. It is restored from and saved to a process.Process record
// at scheduling boundaries; there is no concurrent access to a single File.
type File struct {
	regs [Count]uint32
}

// New returns a File with every register cleared, matching the state after
// init().
func New() *File {
	return &File{}
}

// Reset clears every register back to zero.
func (f *File) Reset() {
	for i := range f.regs {
		f.regs[i] = 0
	}
}

// Read returns the value of register i. Register 0 always reads 0.
func (f *File) Read(i int) uint32 {
	if i == 0 {
		return 0
	}
	return f.regs[i]
}

// Read16 returns the low 16 bits of register i, the width every general
// register (1-11) is defined over.
func (f *File) Read16(i int) uint16 {
	return uint16(f.Read(i))
}

// Write stores v into register i. Writing register 0 is a silent no-op.
// Registers 1-11 are masked to 16 bits; 12-15 keep all 32 bits.
func (f *File) Write(i int, v uint32) {
	if i == 0 {
		return
	}
	if i < AddrWideStart {
		f.regs[i] = uint32(uint16(v))
	} else {
		f.regs[i] = v
	}
}

// Dump returns a snapshot of all 16 registers, for the monitor and for
// save/restore at scheduling boundaries.
func (f *File) Dump() [Count]uint32 {
	return f.regs
}

// Load replaces the whole register file, used when the scheduler restores
// a process's saved registers before a burst.
func (f *File) Load(snapshot [Count]uint32) {
	f.regs = snapshot
	f.regs[0] = 0
}
