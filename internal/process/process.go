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

// Package process holds the per-process record, the bounded process
// table, the program-image loader, and the round-robin scheduler that
// drives the CPU across every active process in fixed bursts.
package process

import (
	"bytes"
	"encoding/binary"

	"github.com/rcornwell/iridium/internal/alu"
	"github.com/rcornwell/iridium/internal/heap"
	"github.com/rcornwell/iridium/internal/ierr"
	"github.com/rcornwell/iridium/internal/mmu"
)

// Defaults not pinned to a numeric value anywhere in the source
// material; chosen to keep a handful of processes and a modest heap
// comfortably inside a MinPages-sized physical store.
const (
	MaxProcesses    = 64
	DefaultHeapSize = 64 * 1024 // bytes, must be a power of two
)

// HeapSize is the heap (and stack) region every new process is given.
// It defaults to DefaultHeapSize and is the knob the CLI's --heap flag
// overrides before any program is loaded.
var HeapSize uint32 = DefaultHeapSize

// Process is one schedulable unit of execution.
type Process struct {
	ID             uint16
	PC             uint32
	MaxLogicalAddr uint32
	SavedRegs      [16]uint32
	Flags          alu.Flags
	AtomEnabled    bool
	HeapBase       uint32
	HeapTree       *heap.Tree
	StackBase      uint32
	active         bool
}

// Table is the bounded, id-indexed vector of process records.
type Table struct {
	slots    [MaxProcesses]*Process
	numAlive int
}

// NewTable returns an empty process table.
func NewTable() *Table {
	return &Table{}
}

// Get returns the process at id, or nil if the slot is empty.
func (t *Table) Get(id uint16) *Process {
	if int(id) >= MaxProcesses {
		return nil
	}
	return t.slots[id]
}

// NumActive returns the count of live processes.
func (t *Table) NumActive() int {
	return t.numAlive
}

// IDsInOrder returns the ids of every active slot, ascending, the
// iteration order the scheduler's run_all is specified to use.
func (t *Table) IDsInOrder() []uint16 {
	ids := make([]uint16, 0, t.numAlive)
	for i, p := range t.slots {
		if p != nil {
			ids = append(ids, uint16(i))
		}
	}
	return ids
}

var (
	dataMarker = []uint16{0x6461, 0x7461, 0x003A} // "da","ta",":\0"
	textMarker = []uint16{0x7465, 0x7874, 0x003A} // "te","xt",":\0"
)

// matchMarker reports whether words[i:] begins with marker.
func matchMarker(words []uint16, i int, marker []uint16) bool {
	if i+len(marker) > len(words) {
		return false
	}
	for k, w := range marker {
		if words[i+k] != w {
			return false
		}
	}
	return true
}

// LoadProgram builds and registers a new process by walking image as a
// stream of big-endian 16-bit words, recognizing the data:/text:
// section markers, and writing each remaining word through the MMU
// into physical RAM. It then reserves the heap and stack regions.
func (t *Table) LoadProgram(id uint16, image []byte, table *mmu.Table, write func(addr uint32, v uint16)) (*Process, error) {
	if t.numAlive >= MaxProcesses || t.Get(id) != nil {
		return nil, &ierr.ResourceError{Resource: "process slots"}
	}

	words, err := decodeWords(image)
	if err != nil {
		return nil, err
	}

	p := &Process{ID: id, active: true}

	kind := mmu.Code
	ref, err := table.Allocate(id, kind, p.MaxLogicalAddr)
	if err != nil {
		return nil, err
	}
	p.MaxLogicalAddr += mmu.PageSize
	curPhys := ref.PhysStart
	addr := uint32(0)

	i := 0
	for i < len(words) {
		if matchMarker(words, i, dataMarker) {
			kind = mmu.Data
			i += len(dataMarker)
			addr = roundUpPage(addr)
			if ref, err = table.Allocate(id, kind, p.MaxLogicalAddr); err != nil {
				return nil, err
			}
			p.MaxLogicalAddr += mmu.PageSize
			curPhys = ref.PhysStart
			continue
		}
		if matchMarker(words, i, textMarker) {
			kind = mmu.Text
			i += len(textMarker)
			addr = roundUpPage(addr)
			if ref, err = table.Allocate(id, kind, p.MaxLogicalAddr); err != nil {
				return nil, err
			}
			p.MaxLogicalAddr += mmu.PageSize
			curPhys = ref.PhysStart
			continue
		}

		write(curPhys+(addr&(mmu.PageSize-1)), words[i])
		addr++
		i++
		if addr&(mmu.PageSize-1) == 0 {
			if ref, err = table.Allocate(id, kind, p.MaxLogicalAddr); err != nil {
				return nil, err
			}
			p.MaxLogicalAddr += mmu.PageSize
			curPhys = ref.PhysStart
		}
	}

	if err := reserveRegion(t, id, table, p, mmu.Heap, HeapSize); err != nil {
		return nil, err
	}
	p.HeapTree = heap.New(p.HeapBase, HeapSize)

	if err := reserveRegion(t, id, table, p, mmu.Stack, HeapSize); err != nil {
		return nil, err
	}

	p.PC = 0
	p.Flags = alu.Flags{}

	t.slots[id] = p
	t.numAlive++
	return p, nil
}

func reserveRegion(t *Table, id uint16, table *mmu.Table, p *Process, kind mmu.Kind, size uint32) error {
	pages := size / mmu.PageSize
	if size%mmu.PageSize != 0 {
		pages++
	}
	base := p.MaxLogicalAddr
	for i := uint32(0); i < pages; i++ {
		if _, err := table.Allocate(id, kind, p.MaxLogicalAddr); err != nil {
			return err
		}
		p.MaxLogicalAddr += mmu.PageSize
	}
	switch kind {
	case mmu.Heap:
		p.HeapBase = base
	case mmu.Stack:
		p.StackBase = base
	}
	return nil
}

func roundUpPage(addr uint32) uint32 {
	if addr&(mmu.PageSize-1) == 0 {
		return addr
	}
	return (addr + mmu.PageSize) &^ (mmu.PageSize - 1)
}

// decodeWords reinterprets image as a stream of big-endian 16-bit
// words, per the external program-image format.
func decodeWords(image []byte) ([]uint16, error) {
	if len(image)%2 != 0 {
		image = append(image, 0)
	}
	words := make([]uint16, len(image)/2)
	r := bytes.NewReader(image)
	if err := binary.Read(r, binary.BigEndian, &words); err != nil {
		return nil, &ierr.IOError{Op: "decode program image", Err: err}
	}
	return words, nil
}

// Retire removes id from the table and releases its frames.
func (t *Table) Retire(id uint16, pages *mmu.Table) {
	if t.Get(id) == nil {
		return
	}
	pages.Release(id)
	t.slots[id] = nil
	t.numAlive--
}
