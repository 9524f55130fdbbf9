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

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/iridium/internal/config"
	"github.com/rcornwell/iridium/internal/console"
	"github.com/rcornwell/iridium/internal/fat16"
	"github.com/rcornwell/iridium/internal/ierr"
	"github.com/rcornwell/iridium/internal/loader"
	"github.com/rcornwell/iridium/internal/logger"
	"github.com/rcornwell/iridium/internal/mmu"
	"github.com/rcornwell/iridium/internal/monitor"
	"github.com/rcornwell/iridium/internal/physmem"
	"github.com/rcornwell/iridium/internal/process"
	isyscall "github.com/rcornwell/iridium/internal/syscall"
)

var Logger *slog.Logger

func main() {
	os.Exit(run())
}

// run is main's body, factored out so exit codes are return values
// instead of scattered os.Exit calls, matching the table in the
// command-line reference.
func run() int {
	optConfig := getopt.StringLong("config", 'c', "", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDisk := getopt.StringLong("disk", 0, "", "FAT16 disk image")
	optBurst := getopt.IntLong("burst", 0, 0, "Instructions per scheduling burst")
	optPages := getopt.IntLong("pages", 0, 0, "Physical page count")
	optHeap := getopt.IntLong("heap", 0, 0, "Per-process heap/stack size in bytes")
	optDebug := getopt.BoolLong("debug", 'd', "Enable debug logging")
	optMonitor := getopt.BoolLong("monitor", 'm', "Drop into the interactive monitor instead of running to completion")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		return int(ierr.ExitOK)
	}

	var logFile *os.File
	if *optLogFile != "" {
		var err error
		logFile, err = os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "can't create log file:", err)
			return int(ierr.ExitUsage)
		}
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	Logger = slog.New(logger.New(logFile, &slog.HandlerOptions{Level: programLevel}, *optDebug))
	slog.SetDefault(Logger)

	cfg := config.Default()
	if *optConfig != "" {
		f, err := os.Open(*optConfig)
		if err != nil {
			Logger.Error("can't open configuration file", "path", *optConfig, "err", err)
			return int(ierr.ExitUsage)
		}
		var errs []error
		cfg, errs = config.Parse(f)
		f.Close()
		for _, e := range errs {
			Logger.Warn("configuration", "err", e)
		}
	}
	if *optDisk != "" {
		cfg.DiskImage = *optDisk
	}
	if *optBurst > 0 {
		cfg.BurstLen = *optBurst
	}

	args := getopt.Args()
	if len(args) == 0 {
		Logger.Error("usage: iridium [options] <program-file> [<program-file> ...]")
		return int(ierr.ExitUsage)
	}

	numPages := physmem.MinPages
	if *optPages > 0 {
		numPages = *optPages
	}
	if *optHeap > 0 {
		process.HeapSize = uint32(*optHeap)
	}
	mem := physmem.New(numPages)
	pages := mmu.New(numPages)

	var files *fat16.FileSystem
	if diskImage, err := loader.ReadDiskImage(cfg.DiskImage); err == nil {
		fs, err := fat16.NewFileSystem(diskImage)
		if err != nil {
			Logger.Warn("disk image present but unreadable", "path", cfg.DiskImage, "err", err)
		} else {
			files = fs
		}
	} else {
		Logger.Debug("no disk image loaded", "path", cfg.DiskImage, "err", err)
	}

	con := console.NewStandard(Logger)
	dispatcher := isyscall.New(con, files)

	table := process.NewTable()

	for id, path := range args {
		image, err := loader.ReadProgramImage(path)
		if err != nil {
			Logger.Error("loading program", "path", path, "err", err)
			return int(ierr.ExitUsage)
		}
		p, err := table.LoadProgram(uint16(id), image, pages, mem.Write)
		if err != nil {
			Logger.Error("starting process", "path", path, "err", err)
			return exitCodeFor(err)
		}
		dispatcher.Heaps[p.ID] = p.HeapTree
		dispatcher.HeapBase[p.ID] = p.HeapBase
	}

	sched := process.NewScheduler(table, mem, pages, dispatcher)
	sched.BurstLen = cfg.BurstLen

	if *optMonitor {
		mon := &monitor.Monitor{Sched: sched, Pages: pages, Log: Logger}
		mon.Run()
		return int(ierr.ExitOK)
	}

	if err := sched.RunAll(); err != nil {
		Logger.Error("execution halted", "err", err)
		return exitCodeFor(err)
	}
	return int(ierr.ExitOK)
}

// exitCodeFor maps a fatal error to the exit code the command-line
// reference specifies for it, falling back to a generic failure code
// for anything that doesn't carry one.
func exitCodeFor(err error) int {
	var withCode interface{ ExitCode() ierr.ExitCode }
	if errors.As(err, &withCode) {
		return int(withCode.ExitCode())
	}
	var resource *ierr.ResourceError
	if errors.As(err, &resource) {
		return int(ierr.ExitOutOfMemory)
	}
	var io *ierr.IOError
	if errors.As(err, &io) {
		return int(ierr.ExitUsage)
	}
	return int(ierr.ExitUsage)
}
