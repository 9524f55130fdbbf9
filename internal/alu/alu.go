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

// Package alu implements the eight Iridium arithmetic/logic operations
// over 16-bit operands. Only Add and Sub touch the flag latch; shifts
// and bitwise ops return a plain result and leave the caller's existing
// Flags untouched.
package alu

// Flags holds the three-bit ALU condition latch. It is copied into and
// out of a process record at scheduling boundaries.
type Flags struct {
	Z bool // result == 0
	N bool // bit 15 of result set
	C bool // unsigned carry/borrow out of add/sub
}

func zn(result uint16) (bool, bool) {
	return result == 0, result&0x8000 != 0
}

// Add computes a+b mod 2^16 and sets Z, N, and C from the unsigned sum.
func Add(a, b uint16) (uint16, Flags) {
	sum := uint32(a) + uint32(b)
	result := uint16(sum)
	z, n := zn(result)
	return result, Flags{Z: z, N: n, C: sum >= 0x10000}
}

// Sub computes a-b as add(a, ^b+1), inheriting Add's flag rules bit for
// bit including the carry/borrow convention.
func Sub(a, b uint16) (uint16, Flags) {
	return Add(a, ^b+1)
}

// Cmp discards the subtraction result and returns only the flags it
// would have set, per the CMP opcode's "flags <- rb - ra" semantics.
func Cmp(a, b uint16) Flags {
	_, f := Sub(a, b)
	return f
}

// Shl shifts a left by the low 4 bits of amt. Shifts never touch the
// flag latch; the caller's existing Flags are left as they were.
func Shl(a, amt uint16) uint16 {
	return a << (amt & 0xF)
}

// Shr is a logical (zero-filling) right shift. Leaves flags unchanged.
func Shr(a, amt uint16) uint16 {
	return a >> (amt & 0xF)
}

// Sar is an arithmetic right shift, replicating bit 15 into vacated
// high bits. Leaves flags unchanged.
func Sar(a, amt uint16) uint16 {
	shift := amt & 0xF
	return uint16(int16(a) >> shift)
}

// Nand computes the bitwise NAND of a and b. Leaves flags unchanged.
func Nand(a, b uint16) uint16 {
	return ^(a & b)
}

// Or computes the bitwise OR of a and b. Leaves flags unchanged.
func Or(a, b uint16) uint16 {
	return a | b
}
