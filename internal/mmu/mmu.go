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

// Package mmu implements the inverted page table: one PTE per physical
// frame, naming the (process, logical range) it currently backs. Both
// allocation and translation are specified as linear scans; this
// implementation follows the letter of that rather than indexing by
// (pid, logical>>12), since the table is small enough that the scan
// is not a practical bottleneck and staying literal keeps the
// reference behavior easy to audit.
package mmu

import "github.com/rcornwell/iridium/internal/ierr"

// PageSize is the number of words per frame.
const PageSize = 4096

// Kind classifies what a page currently holds.
type Kind int

const (
	Free Kind = iota
	Code
	Data
	Text
	Heap
	Stack
)

func (k Kind) String() string {
	switch k {
	case Free:
		return "free"
	case Code:
		return "code"
	case Data:
		return "data"
	case Text:
		return "text"
	case Heap:
		return "heap"
	case Stack:
		return "stack"
	default:
		return "unknown"
	}
}

// PTE is one entry of the inverted page table, one per physical frame.
type PTE struct {
	ProcessID    uint16
	Kind         Kind
	Allocated    bool
	LogicalStart uint32
	PhysStart    uint32
}

// PageRef is a stable handle to an allocated frame, returned by Allocate.
type PageRef struct {
	FrameIndex   int
	PhysStart    uint32
	LogicalStart uint32
}

// Table is the inverted page table: NumPages entries, one per physical
// frame.
type Table struct {
	entries []PTE
}

// New builds a table over numPages frames, each initialized free with
// its physical start at frameIndex*PageSize.
func New(numPages int) *Table {
	t := &Table{entries: make([]PTE, numPages)}
	for i := range t.entries {
		t.entries[i] = PTE{Kind: Free, PhysStart: uint32(i * PageSize)}
	}
	return t
}

// NumPages returns the number of frames in the table.
func (t *Table) NumPages() int {
	return len(t.entries)
}

// Allocate linearly scans for the first free frame and assigns it to
// pid at logicalStart. The caller tracks its own max logical address
// and advances it by PageSize. Returns a ResourceError if no frame is
// free.
func (t *Table) Allocate(pid uint16, kind Kind, logicalStart uint32) (PageRef, error) {
	for i := range t.entries {
		if t.entries[i].Allocated {
			continue
		}
		t.entries[i].ProcessID = pid
		t.entries[i].Kind = kind
		t.entries[i].Allocated = true
		t.entries[i].LogicalStart = logicalStart
		return PageRef{
			FrameIndex:   i,
			PhysStart:    t.entries[i].PhysStart,
			LogicalStart: logicalStart,
		}, nil
	}
	return PageRef{}, &ierr.ResourceError{Resource: "pages"}
}

// Translate linearly scans for the PTE owned by pid whose logical
// range contains logical, returning physStart + (logical mod PageSize).
func (t *Table) Translate(pid uint16, logical uint32) (uint32, error) {
	for i := range t.entries {
		e := &t.entries[i]
		if !e.Allocated || e.ProcessID != pid {
			continue
		}
		if logical >= e.LogicalStart && logical < e.LogicalStart+PageSize {
			return e.PhysStart + (logical & (PageSize - 1)), nil
		}
	}
	return 0, &ierr.TranslationError{PID: pid, Logical: logical}
}

// Release returns every frame owned by pid to Free.
func (t *Table) Release(pid uint16) {
	for i := range t.entries {
		if t.entries[i].Allocated && t.entries[i].ProcessID == pid {
			t.entries[i] = PTE{Kind: Free, PhysStart: t.entries[i].PhysStart}
		}
	}
}

// Reclassify changes the Kind of the PTE backing (pid, logicalStart),
// used by brk to move a page between the heap and stack regions
// without moving data. Returns false if no such PTE exists.
func (t *Table) Reclassify(pid uint16, logicalStart uint32, kind Kind) bool {
	for i := range t.entries {
		e := &t.entries[i]
		if e.Allocated && e.ProcessID == pid && e.LogicalStart == logicalStart {
			e.Kind = kind
			return true
		}
	}
	return false
}

// Entries returns a snapshot of the page table, for the monitor.
func (t *Table) Entries() []PTE {
	out := make([]PTE, len(t.entries))
	copy(out, t.entries)
	return out
}
