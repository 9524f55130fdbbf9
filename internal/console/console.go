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

// Package console is the narrow host-I/O contract syscalls are
// defined against: stdout for print codes, stdin for read codes, and
// an abstract MIDI sink that a headless run can stub out.
package console

import (
	"io"
	"log/slog"
	"os"
)

// Console is the collaborator syscalls reach for host I/O.
type Console interface {
	Stdout() io.Writer
	Stdin() io.Reader
	MIDI(code uint8)
}

// Standard is the default Console: real stdout/stdin, MIDI codes
// logged rather than played.
type Standard struct {
	Out io.Writer
	In  io.Reader
	Log *slog.Logger
}

// NewStandard wires os.Stdout/os.Stdin and the given logger.
func NewStandard(log *slog.Logger) *Standard {
	return &Standard{Out: os.Stdout, In: os.Stdin, Log: log}
}

func (s *Standard) Stdout() io.Writer { return s.Out }
func (s *Standard) Stdin() io.Reader  { return s.In }

// MIDI logs the code at debug level; Iridium has no audio backend, so
// this is the supplemented behavior for syscall 12 rather than a
// silent no-op.
func (s *Standard) MIDI(code uint8) {
	if s.Log != nil {
		s.Log.Debug("midi", "code", code)
	}
}
