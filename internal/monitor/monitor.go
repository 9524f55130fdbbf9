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

// Package monitor is the interactive liner-backed REPL for inspecting
// a running machine: registers, memory, the page table, the process
// table, and single-stepping a process through one burst at a time.
package monitor

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/rcornwell/iridium/internal/mmu"
	"github.com/rcornwell/iridium/internal/process"
)

var commands = []string{"regs", "mem", "mmu", "ps", "heap", "step", "quit", "help"}

// Monitor wraps the shared machine state the REPL commands inspect.
type Monitor struct {
	Sched *process.Scheduler
	Pages *mmu.Table
	Log   *slog.Logger
}

// Run drives the prompt loop until the user quits or aborts with
// Ctrl-D/Ctrl-C, mirroring the teacher's ConsoleReader shape: a liner
// instance with tab completion, dispatching each line to process.
func (m *Monitor) Run() {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		var out []string
		for _, c := range commands {
			if strings.HasPrefix(c, partial) {
				out = append(out, c)
			}
		}
		return out
	})

	for {
		input, err := line.Prompt("iridium> ")
		if err == nil {
			line.AppendHistory(input)
			quit, perr := m.process(input)
			if perr != nil {
				fmt.Println("Error: " + perr.Error())
			}
			if quit {
				return
			}
			continue
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return
		}
		m.Log.Error("error reading line: " + err.Error())
		return
	}
}

// process dispatches one command line, returning quit=true on "quit".
func (m *Monitor) process(input string) (bool, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false, nil
	}
	switch fields[0] {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Println(strings.Join(commands, " "))
	case "regs":
		return false, m.cmdRegs(fields[1:])
	case "mem":
		return false, m.cmdMem(fields[1:])
	case "mmu":
		m.cmdMMU()
	case "ps":
		m.cmdPS()
	case "heap":
		return false, m.cmdHeap(fields[1:])
	case "step":
		return false, m.cmdStep(fields[1:])
	default:
		return false, fmt.Errorf("unknown command %q", fields[0])
	}
	return false, nil
}

func (m *Monitor) cmdRegs(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: regs <pid>")
	}
	id, err := strconv.ParseUint(args[0], 10, 16)
	if err != nil {
		return err
	}
	p := m.Sched.Table.Get(uint16(id))
	if p == nil {
		return fmt.Errorf("no such process %d", id)
	}
	for i, v := range p.SavedRegs {
		fmt.Printf("r%-2d = 0x%08X\n", i, v)
	}
	return nil
}

func (m *Monitor) cmdMem(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: mem <pid> <logical-addr>")
	}
	id, err := strconv.ParseUint(args[0], 10, 16)
	if err != nil {
		return err
	}
	logical, err := strconv.ParseUint(args[1], 0, 32)
	if err != nil {
		return err
	}
	phys, err := m.Pages.Translate(uint16(id), uint32(logical))
	if err != nil {
		return err
	}
	fmt.Printf("logical=0x%08X phys=0x%08X value=0x%04X\n", logical, phys, m.Sched.Mem.Read(phys))
	return nil
}

func (m *Monitor) cmdMMU() {
	for i, e := range m.Pages.Entries() {
		if !e.Allocated {
			continue
		}
		fmt.Printf("frame %4d: pid=%d kind=%s logical=0x%08X phys=0x%08X\n",
			i, e.ProcessID, e.Kind, e.LogicalStart, e.PhysStart)
	}
}

func (m *Monitor) cmdPS() {
	for _, id := range m.Sched.Table.IDsInOrder() {
		p := m.Sched.Table.Get(id)
		fmt.Printf("pid=%d pc=0x%08X flags=%+v\n", p.ID, p.PC, p.Flags)
	}
}

func (m *Monitor) cmdHeap(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: heap <pid>")
	}
	id, err := strconv.ParseUint(args[0], 10, 16)
	if err != nil {
		return err
	}
	p := m.Sched.Table.Get(uint16(id))
	if p == nil {
		return fmt.Errorf("no such process %d", id)
	}
	fmt.Printf("heap base=0x%08X size=%d singleFreeRoot=%v\n",
		p.HeapBase, p.HeapTree.Size(), p.HeapTree.IsSingleFreeRoot())
	return nil
}

func (m *Monitor) cmdStep(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: step <pid>")
	}
	id, err := strconv.ParseUint(args[0], 10, 16)
	if err != nil {
		return err
	}
	p := m.Sched.Table.Get(uint16(id))
	if p == nil {
		return fmt.Errorf("no such process %d", id)
	}
	retired, err := m.Sched.ExecuteBurst(p)
	if err != nil {
		return err
	}
	if retired {
		m.Sched.Table.Retire(p.ID, m.Pages)
		fmt.Printf("pid %d retired\n", p.ID)
	}
	return nil
}
