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

package fat16

import (
	"strings"

	"github.com/rcornwell/iridium/internal/ierr"
)

// MaxOpenFiles bounds the open_files table; not pinned to a numeric
// value in the source material.
const MaxOpenFiles = 32

// Handle identifies an open file within a FileSystem's open-files
// table.
type Handle int

// openFile is one live entry in the open-files table.
type openFile struct {
	entry          DirEntry
	currentCluster uint32
	nextCluster    uint32
	clusterOffset  uint32 // byte offset within currentCluster
	inUse          bool
}

// FileSystem is the read path over one FAT16 image: directory lookup,
// seek, read, and a bounded table of open handles.
type FileSystem struct {
	img   *Image
	open  [MaxOpenFiles]openFile
}

// NewFileSystem parses raw as a FAT16 image.
func NewFileSystem(raw []byte) (*FileSystem, error) {
	img, err := Open(raw)
	if err != nil {
		return nil, err
	}
	return &FileSystem{img: img}, nil
}

func (fs *FileSystem) clusterBytes() uint32 {
	return uint32(fs.img.Meta.SectorsPerCluster) * uint32(fs.img.Meta.BytesPerSector)
}

func (fs *FileSystem) rootEntries() []DirEntry {
	limit := uint32(fs.img.Meta.RootEntryCount) * 32
	return fs.img.IterateDirectory(fs.img.rootAddr, limit)
}

func (fs *FileSystem) entriesInCluster(cluster uint32) []DirEntry {
	addr := fs.img.clusterAddr(cluster)
	return fs.img.IterateDirectory(addr, fs.clusterBytes())
}

// Open splits path on '/' and walks the directory tree to find the
// named file, allocating a slot in the bounded open-files table.
func (fs *FileSystem) Open(path string) (Handle, error) {
	parts := splitPath(path)
	entries := fs.rootEntries()
	var current DirEntry
	found := len(parts) == 0
	for i, part := range parts {
		var match *DirEntry
		for j := range entries {
			e := &entries[j]
			if e.Attr&0x3F == longNameAttr {
				continue
			}
			if strings.EqualFold(e.Name, part) {
				match = e
				break
			}
		}
		if match == nil {
			return -1, &ierr.IOError{Op: "open " + path, Err: errNotFound}
		}
		current = *match
		if i < len(parts)-1 {
			if !current.IsDirectory() {
				return -1, &ierr.IOError{Op: "open " + path, Err: errNotFound}
			}
			entries = fs.entriesInCluster(current.cluster())
		} else {
			found = true
		}
	}
	if !found {
		return -1, &ierr.IOError{Op: "open " + path, Err: errNotFound}
	}

	for i := range fs.open {
		if !fs.open[i].inUse {
			cluster := current.cluster()
			var next uint32
			if int(cluster) < len(fs.img.FAT) {
				next = uint32(fs.img.FAT[cluster])
			} else {
				next = EndOfChain
			}
			fs.open[i] = openFile{
				entry:          current,
				currentCluster: cluster,
				nextCluster:    next,
				inUse:          true,
			}
			return Handle(i), nil
		}
	}
	return -1, &ierr.ResourceError{Resource: "open files"}
}

type notFoundError struct{}

func (notFoundError) Error() string { return "path not found" }

var errNotFound = notFoundError{}

func splitPath(path string) []string {
	var out []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Seek repositions handle h. whence=0 is absolute, whence=1 is
// relative to the handle's current position. Crossing a cluster
// boundary advances currentCluster and refreshes nextCluster from the
// FAT, then recurses with the remaining offset.
func (fs *FileSystem) Seek(h Handle, offset int64, whence int) (int64, error) {
	if !fs.valid(h) {
		return 0, &ierr.IOError{Op: "seek", Err: errNotFound}
	}
	of := &fs.open[h]
	var target int64
	switch whence {
	case 0:
		target = offset
	case 1:
		target = int64(fs.position(h)) + offset
	default:
		panic("fat16: Seek whence must be 0 or 1")
	}
	if target < 0 {
		target = 0
	}

	clusterBytes := int64(fs.clusterBytes())
	of.clusterOffset = 0
	of.currentCluster = of.entry.cluster()
	if int(of.currentCluster) < len(fs.img.FAT) {
		of.nextCluster = uint32(fs.img.FAT[of.currentCluster])
	} else {
		of.nextCluster = EndOfChain
	}

	remaining := target
	for remaining >= clusterBytes {
		if of.currentCluster >= EndOfChain {
			break
		}
		of.currentCluster = of.nextCluster
		if int(of.currentCluster) < len(fs.img.FAT) {
			of.nextCluster = uint32(fs.img.FAT[of.currentCluster])
		} else {
			of.nextCluster = EndOfChain
		}
		remaining -= clusterBytes
	}
	of.clusterOffset = uint32(remaining)
	return target, nil
}

// position returns the handle's current absolute offset into the
// file, used by f_seek's round-trip testable property.
func (fs *FileSystem) position(h Handle) int64 {
	of := &fs.open[h]
	clusterBytes := int64(fs.clusterBytes())
	walked := int64(0)
	cluster := of.entry.cluster()
	for cluster != of.currentCluster && cluster < EndOfChain {
		if int(cluster) >= len(fs.img.FAT) {
			break
		}
		cluster = uint32(fs.img.FAT[cluster])
		walked += clusterBytes
	}
	return walked + int64(of.clusterOffset)
}

// Position exposes the handle's current absolute offset.
func (fs *FileSystem) Position(h Handle) int64 {
	if !fs.valid(h) {
		return 0
	}
	return fs.position(h)
}

// Read copies up to len(buf) bytes, stitching across cluster
// boundaries. Reading a directory or volume entry is refused. It
// returns the number of bytes read before end-of-chain.
func (fs *FileSystem) Read(h Handle, buf []byte) (int, error) {
	if !fs.valid(h) {
		return 0, &ierr.IOError{Op: "read", Err: errNotFound}
	}
	of := &fs.open[h]
	if of.entry.IsVolumeOrDirectory() {
		return 0, &ierr.IOError{Op: "read", Err: errRefused}
	}
	clusterBytes := fs.clusterBytes()
	n := 0
	for n < len(buf) {
		if of.currentCluster >= EndOfChain {
			break
		}
		addr := fs.img.clusterAddr(of.currentCluster) + of.clusterOffset
		avail := clusterBytes - of.clusterOffset
		want := uint32(len(buf) - n)
		take := avail
		if want < take {
			take = want
		}
		if int(addr+take) > len(fs.img.raw) {
			take = uint32(len(fs.img.raw)) - addr
		}
		copy(buf[n:], fs.img.raw[addr:addr+take])
		n += int(take)
		of.clusterOffset += take
		if of.clusterOffset >= clusterBytes {
			of.currentCluster = of.nextCluster
			of.clusterOffset = 0
			if int(of.currentCluster) < len(fs.img.FAT) {
				of.nextCluster = uint32(fs.img.FAT[of.currentCluster])
			} else {
				of.nextCluster = EndOfChain
			}
		}
		if take == 0 {
			break
		}
	}
	return n, nil
}

type refusedError struct{}

func (refusedError) Error() string { return "cannot read a directory or volume entry" }

var errRefused = refusedError{}

// Close releases h's slot in the open-files table.
func (fs *FileSystem) Close(h Handle) {
	if fs.valid(h) {
		fs.open[h] = openFile{}
	}
}

func (fs *FileSystem) valid(h Handle) bool {
	return h >= 0 && int(h) < len(fs.open) && fs.open[h].inUse
}
