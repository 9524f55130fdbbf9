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

// Package fat16 implements the read-only path over a FAT16 disk
// image: BPB metadata, directory iteration with long-filename
// reconstruction, and cluster-chain file handles. There is no write
// path; file creation, FAT persistence, and directory insertion are
// left unimplemented per the sketched-but-nonfunctional state of the
// source this was distilled from.
package fat16

import (
	"encoding/binary"
	"strings"

	"github.com/rcornwell/iridium/internal/ierr"
)

// Metadata is the BPB fields parsed from offset 11 of the image.
type Metadata struct {
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	RootEntryCount    uint16
	TotSec16          uint16
	FATSize16         uint16
	TotSec32          uint32
	VolLabel          [11]byte
}

const bpbOffset = 11

// ParseMetadata reads the BPB starting at byte offset 11 of image.
func ParseMetadata(image []byte) (Metadata, error) {
	if len(image) < bpbOffset+51 {
		return Metadata{}, &ierr.IOError{Op: "parse BPB", Err: errShortImage}
	}
	b := image[bpbOffset:]
	var m Metadata
	m.BytesPerSector = binary.LittleEndian.Uint16(b[0:2])
	m.SectorsPerCluster = b[2]
	m.ReservedSectors = binary.LittleEndian.Uint16(b[3:5])
	m.NumFATs = b[5]
	m.RootEntryCount = binary.LittleEndian.Uint16(b[6:8])
	m.TotSec16 = binary.LittleEndian.Uint16(b[8:10])
	// b[10] reserved
	m.FATSize16 = binary.LittleEndian.Uint16(b[11:13])
	// b[13:21] eight reserved bytes
	m.TotSec32 = binary.LittleEndian.Uint32(b[21:25])
	// seven reserved bytes at b[25:32]
	copy(m.VolLabel[:], b[32:43])
	return m, nil
}

type shortImageError struct{}

func (shortImageError) Error() string { return "image too short for BPB" }

var errShortImage = shortImageError{}

// EndOfChain marks a cluster value as the last in its chain.
const EndOfChain = 0xFFF8

// DirEntry is one parsed 32-byte directory record, with any preceding
// long-filename fragments folded into Name.
type DirEntry struct {
	Name        string
	Attr        uint8
	HighCluster uint16
	LowCluster  uint16
	Size        uint32
}

// IsDirectory reports whether the entry names a subdirectory.
func (d DirEntry) IsDirectory() bool { return d.Attr&0x10 != 0 }

// IsVolumeOrDirectory reports whether the entry is a volume label or
// directory, the attribute bits f_read refuses to read as a file.
func (d DirEntry) IsVolumeOrDirectory() bool { return d.Attr&0x18 != 0 }

func (d DirEntry) cluster() uint32 {
	return uint32(d.HighCluster)<<16 | uint32(d.LowCluster)
}

const longNameAttr = 0x0F

// Image wraps a parsed FAT16 image: metadata, the slurped FAT table,
// and the raw bytes needed to compute cluster addresses.
type Image struct {
	Meta     Metadata
	FAT      []uint16
	raw      []byte
	rootAddr uint32
	dataBase uint32
}

// Open parses metadata and slurps the FAT table from a raw image.
func Open(raw []byte) (*Image, error) {
	meta, err := ParseMetadata(raw)
	if err != nil {
		return nil, err
	}
	fatBytes := int(meta.FATSize16) * int(meta.BytesPerSector)
	fatStart := int(meta.ReservedSectors) * int(meta.BytesPerSector)
	if fatStart+fatBytes > len(raw) {
		return nil, &ierr.IOError{Op: "slurp FAT", Err: errShortImage}
	}
	fat := make([]uint16, fatBytes/2)
	for i := range fat {
		fat[i] = binary.LittleEndian.Uint16(raw[fatStart+2*i : fatStart+2*i+2])
	}

	rootDirSectors := (int(meta.RootEntryCount)*32 + int(meta.BytesPerSector) - 1) / int(meta.BytesPerSector)
	rootAddr := uint32(fatStart + int(meta.NumFATs)*fatBytes)
	dataBase := rootAddr + uint32(rootDirSectors*int(meta.BytesPerSector))

	return &Image{Meta: meta, FAT: fat, raw: raw, rootAddr: rootAddr, dataBase: dataBase}, nil
}

// clusterAddr returns the byte address of the first sector of
// cluster, per the cluster-to-byte-address formula: clusters are
// numbered from 2, and the data region begins after the root
// directory's reserved sectors.
func (img *Image) clusterAddr(cluster uint32) uint32 {
	spc := uint32(img.Meta.SectorsPerCluster)
	bps := uint32(img.Meta.BytesPerSector)
	return img.dataBase + (cluster-2)*spc*bps
}

// IterateDirectory reads directory entries sequentially from addr,
// reconstructing long filenames, stopping at the cluster boundary or
// at three consecutive zero fields (size, write-date, write-time).
func (img *Image) IterateDirectory(addr uint32, limit uint32) []DirEntry {
	var out []DirEntry
	var longParts []string
	pos := addr
	for pos+32 <= addr+limit && pos+32 <= uint32(len(img.raw)) {
		raw := img.raw[pos : pos+32]
		pos += 32

		attr := raw[11]
		writeTime := binary.LittleEndian.Uint16(raw[22:24])
		writeDate := binary.LittleEndian.Uint16(raw[24:26])
		size := binary.LittleEndian.Uint32(raw[28:32])
		if size == 0 && writeDate == 0 && writeTime == 0 && raw[0] == 0 {
			break
		}

		if attr&longNameAttr == longNameAttr {
			longParts = append([]string{decodeLongNameFragment(raw)}, longParts...)
			continue
		}

		name := shortName(raw[0:11])
		if len(longParts) > 0 {
			name = strings.Join(longParts, "")
			longParts = nil
		}

		out = append(out, DirEntry{
			Name:        name,
			Attr:        attr,
			HighCluster: binary.LittleEndian.Uint16(raw[20:22]),
			LowCluster:  binary.LittleEndian.Uint16(raw[26:28]),
			Size:        size,
		})
	}
	return out
}

// shortName reinserts the dot an 8.3 directory entry's raw 11 bytes
// omit, e.g. "HELLO   TXT" becomes "HELLO.TXT".
func shortName(raw []byte) string {
	base := strings.TrimRight(string(raw[0:8]), " ")
	ext := strings.TrimRight(string(raw[8:11]), " ")
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// decodeLongNameFragment extracts the UCS-2 name characters from one
// long-filename directory slot, per the FAT long-filename convention:
// five chars at offset 1, six at offset 14, two at offset 28.
func decodeLongNameFragment(raw []byte) string {
	var runes []rune
	add := func(off int, count int) {
		for i := 0; i < count; i++ {
			lo := raw[off+2*i]
			hi := raw[off+2*i+1]
			ch := uint16(hi)<<8 | uint16(lo)
			if ch == 0x0000 || ch == 0xFFFF {
				return
			}
			runes = append(runes, rune(ch))
		}
	}
	add(1, 5)
	add(14, 6)
	add(28, 2)
	return string(runes)
}
