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

package process

import (
	"github.com/rcornwell/iridium/internal/cpu"
	"github.com/rcornwell/iridium/internal/mmu"
	"github.com/rcornwell/iridium/internal/physmem"
	"github.com/rcornwell/iridium/internal/register"
)

// DefaultBurstLen is the number of instructions a process runs before
// the scheduler preempts it in favor of the next runnable process.
const DefaultBurstLen = 1024

// Scheduler drives every active process through fixed-length
// instruction bursts in round-robin, id-ascending order. It owns none
// of the shared machine state itself; Mem, Pages, and Syscalls are the
// collaborators every process shares.
type Scheduler struct {
	Table     *Table
	Mem       *physmem.Memory
	Pages     *mmu.Table
	Syscalls  cpu.SyscallHandler
	BurstLen  int
	Regs      *register.File
}

// NewScheduler builds a Scheduler with the default burst length.
func NewScheduler(table *Table, mem *physmem.Memory, pages *mmu.Table, syscalls cpu.SyscallHandler) *Scheduler {
	return &Scheduler{
		Table:    table,
		Mem:      mem,
		Pages:    pages,
		Syscalls: syscalls,
		BurstLen: DefaultBurstLen,
		Regs:     register.New(),
	}
}

// ExecuteBurst restores p's saved registers/flags, runs up to
// s.BurstLen instructions, then saves PC/flags/registers back into p.
// Returns true if the process retired during the burst.
func (s *Scheduler) ExecuteBurst(p *Process) (bool, error) {
	s.Regs.Load(p.SavedRegs)
	ctx := &cpu.Context{
		PID:      p.ID,
		PC:       p.PC,
		Regs:     s.Regs,
		Flags:    p.Flags,
		Atom:     p.AtomEnabled,
		Mem:      s.Mem,
		Pages:    s.Pages,
		Syscalls: s.Syscalls,
	}

	retired := false
	burst := s.BurstLen
	if ctx.Atom {
		// ATOM disabled preemption is advisory; single-threaded
		// execution already never splits a burst, so this is a no-op
		// beyond documenting the intent.
		burst = s.BurstLen
	}
	for i := 0; i < burst; i++ {
		outcome, err := cpu.Step(ctx)
		if err != nil {
			return false, err
		}
		if outcome == cpu.Retired {
			retired = true
			break
		}
	}

	p.PC = ctx.PC
	p.Flags = ctx.Flags
	p.AtomEnabled = ctx.Atom
	p.SavedRegs = s.Regs.Dump()
	return retired, nil
}

// RunAll iterates the process table in id order, running one burst
// per active process, until none remain. Retired processes are freed
// immediately, including their MMU frames.
func (s *Scheduler) RunAll() error {
	for s.Table.NumActive() > 0 {
		for _, id := range s.Table.IDsInOrder() {
			p := s.Table.Get(id)
			if p == nil {
				continue
			}
			retired, err := s.ExecuteBurst(p)
			if err != nil {
				return err
			}
			if retired {
				s.Table.Retire(id, s.Pages)
			}
		}
	}
	return nil
}
