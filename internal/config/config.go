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

// Package config parses Iridium's line-oriented configuration file:
// '#' comments, blank lines ignored, and "key value" pairs one per
// line. It is deliberately not a structured format (TOML/YAML/JSON):
// the teacher's own configuration layer is a hand-rolled line scanner,
// and Iridium's settings are few enough not to need more.
package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Config holds every setting the config file may set. The CLI's --disk
// and --burst flags override DiskImage and BurstLen.
type Config struct {
	BurstLen    int
	MaxProcs    int
	DiskImage   string
	LogFile     string
	DebugTags   map[string]bool
}

// Default returns a Config with every setting at its built-in default.
func Default() *Config {
	return &Config{
		BurstLen:  1024,
		MaxProcs:  64,
		DiskImage: "os/filesystem/harddrive.img",
		DebugTags: map[string]bool{},
	}
}

// Parse reads key/value lines from r into a Config seeded with
// defaults. Unknown keys are reported but do not abort parsing,
// matching a forgiving config format a hand-edited file is likely to
// need.
func Parse(r io.Reader) (*Config, []error) {
	cfg := Default()
	var errs []error

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			errs = append(errs, fmt.Errorf("line %d: expected \"key value\", got %q", lineNo, line))
			continue
		}
		key, value := fields[0], strings.Join(fields[1:], " ")
		if err := cfg.set(key, value); err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", lineNo, err))
		}
	}
	return cfg, errs
}

func (c *Config) set(key, value string) error {
	switch strings.ToLower(key) {
	case "burst_len":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("burst_len: %w", err)
		}
		c.BurstLen = n
	case "max_processes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("max_processes: %w", err)
		}
		c.MaxProcs = n
	case "disk_image":
		c.DiskImage = value
	case "log":
		c.LogFile = value
	case "debug":
		for _, tag := range strings.Split(value, ",") {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				c.DebugTags[tag] = true
			}
		}
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}
