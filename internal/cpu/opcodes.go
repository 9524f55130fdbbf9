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

package cpu

// Standard opcodes, carried in nibble N1 when N1 != 0xF.
const (
	OpNOP   = 0x0
	OpADD   = 0x1 // rd, ra, rb
	OpSUB   = 0x2 // rd, ra, rb
	OpADDI  = 0x3 // rd, ra, imm4
	OpSUBI  = 0x4 // rd, ra, imm4
	OpSLL   = 0x5 // rd, ra, rb
	OpSRL   = 0x6 // rd, ra, rb
	OpSRA   = 0x7 // rd, ra, rb
	OpNAND  = 0x8 // rd, ra, rb
	OpOR    = 0x9 // rd, ra, rb
	OpLOAD  = 0xA // rd, ra, rb
	OpSTORE = 0xB // rs, ra, rb
	OpMOVUI = 0xC // rd, n3, n4
	OpMOVLI = 0xD // rd, n3, n4
)

// Extended opcodes, carried as the (N1,N2) = (0xF, low) pair.
const (
	OpADDC    = 0xF0 // rd, ra
	OpSUBC    = 0xF1 // rd, ra
	OpJUMP    = 0xF2 // ra, rb
	OpJAL     = 0xF3 // ra, rb
	OpCMP     = 0xF4 // ra, rb
	OpBEQ     = 0xF5 // ra
	OpBNE     = 0xF6 // ra
	OpBLT     = 0xF7 // ra
	OpBGT     = 0xF8 // ra
	OpSYSCALL = 0xFC // n3, n4
	OpATOM    = 0xFD
	OpHALT    = 0xFF
)
