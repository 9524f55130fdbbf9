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

// Package physmem is the flat physical store backing every page the MMU
// hands out. Addresses are 32-bit words; unwritten cells read as zero.
package physmem

const (
	// PageSize is the number of 16-bit words per page.
	PageSize = 4096
	// MinPages is the minimum physical extent spec.md requires.
	MinPages = 4096
)

// Memory is a flat array of 16-bit words indexed by physical address.
// There is no bounds-checking device or key array here, unlike a
// byte-addressed mainframe store: Iridium's physical space is sized
// once at construction and every address within it is legal.
type Memory struct {
	words []uint16
}

// New allocates a physical store of numPages pages, raised to MinPages
// if numPages is below it, since a smaller store would violate the
// minimum physical extent the MMU is specified against.
func New(numPages int) *Memory {
	if numPages < MinPages {
		numPages = MinPages
	}
	return &Memory{words: make([]uint16, numPages*PageSize)}
}

// Size returns the number of addressable words.
func (m *Memory) Size() uint32 {
	return uint32(len(m.words))
}

// Read returns the word at addr. Reading out of range returns zero,
// mirroring the teacher's memory model where unused store reads clean.
func (m *Memory) Read(addr uint32) uint16 {
	if addr >= uint32(len(m.words)) {
		return 0
	}
	return m.words[addr]
}

// Write stores v at addr. Writes past the physical extent are dropped;
// the MMU is responsible for never translating a logical address past
// an allocated page's bounds.
func (m *Memory) Write(addr uint32, v uint16) {
	if addr >= uint32(len(m.words)) {
		return
	}
	m.words[addr] = v
}

// ReadBlock copies n words starting at addr; words past the physical
// extent read as zero.
func (m *Memory) ReadBlock(addr uint32, n int) []uint16 {
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = m.Read(addr + uint32(i))
	}
	return out
}

// WriteBlock stores a slice of words starting at addr.
func (m *Memory) WriteBlock(addr uint32, data []uint16) {
	for i, v := range data {
		m.Write(addr+uint32(i), v)
	}
}
