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

// Package ierr defines the four error kinds used across the emulator core:
// decode, translation, resource, and I/O failures, plus the fatal
// bad-register, unknown-syscall, and brk errors. DecodeError and those
// three fatal errors carry an ExitCode method; the CLI maps the others
// itself.
package ierr

import "fmt"

// ExitCode is the process exit code the CLI reports for a given fatal error.
type ExitCode int

const (
	ExitOK              ExitCode = 0
	ExitUsage           ExitCode = 2
	ExitDoubleInit      ExitCode = -2
	ExitDecode          ExitCode = -3
	ExitBadRegister     ExitCode = -4
	ExitUnknownSyscall  ExitCode = -5
	ExitOutOfMemory     ExitCode = -6
	ExitFilenameTooLong ExitCode = -10
	ExitBadDirectory    ExitCode = -11
	ExitBrkFailed       ExitCode = 50
)

// DecodeError reports an illegal opcode or malformed instruction word.
// It is always fatal.
type DecodeError struct {
	Word uint16
	PC   uint32
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("illegal opcode 0x%04X at pc=0x%08X", e.Word, e.PC)
}

func (e *DecodeError) ExitCode() ExitCode { return ExitDecode }

// TranslationError reports that no page table entry maps a logical address.
// Recoverable: callers receive this as a sentinel, not a panic.
type TranslationError struct {
	PID     uint16
	Logical uint32
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("pid %d: logical address 0x%08X not mapped", e.PID, e.Logical)
}

// ResourceError reports exhaustion of a bounded pool: pages, heap space,
// process slots, or open file descriptors.
type ResourceError struct {
	Resource string
}

func (e *ResourceError) Error() string {
	return "resource exhausted: " + e.Resource
}

// IOError reports a failure talking to the host filesystem or console.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error during %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// BadRegisterError reports a programming error: an out-of-range register index.
type BadRegisterError struct {
	Index int
}

func (e *BadRegisterError) Error() string {
	return fmt.Sprintf("invalid register index %d", e.Index)
}

func (e *BadRegisterError) ExitCode() ExitCode { return ExitBadRegister }

// UnknownSyscallError reports a syscall code the dispatcher has no
// case for. Fatal, unlike the other syscall failures which return a
// sentinel to the caller's registers instead.
type UnknownSyscallError struct {
	Code uint8
}

func (e *UnknownSyscallError) Error() string {
	return fmt.Sprintf("unknown syscall code %d", e.Code)
}

func (e *UnknownSyscallError) ExitCode() ExitCode { return ExitUnknownSyscall }

// BrkError reports that growing or shrinking a process's heap past
// its stack boundary (or the reverse) failed.
type BrkError struct {
	PID    uint16
	Offset int32
}

func (e *BrkError) Error() string {
	return fmt.Sprintf("pid %d: brk(%d) failed: heap/stack boundary collision", e.PID, e.Offset)
}

func (e *BrkError) ExitCode() ExitCode { return ExitBrkFailed }
