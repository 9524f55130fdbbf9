package syscall

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/rcornwell/iridium/internal/fat16"
	"github.com/rcornwell/iridium/internal/heap"
	"github.com/rcornwell/iridium/internal/mmu"
	"github.com/rcornwell/iridium/internal/physmem"
	"github.com/rcornwell/iridium/internal/register"
)

type fakeConsole struct {
	out bytes.Buffer
	in  *strings.Reader
}

func (f *fakeConsole) Stdout() io.Writer { return &f.out }
func (f *fakeConsole) Stdin() io.Reader  { return f.in }
func (f *fakeConsole) MIDI(uint8)        {}

func newFixture(t *testing.T, stdin string) (*Dispatcher, *register.File, *physmem.Memory, *mmu.Table, uint16) {
	t.Helper()
	pages := mmu.New(physmem.MinPages)
	mem := physmem.New(physmem.MinPages)
	const pid = 1
	ref, err := pages.Allocate(pid, mmu.Data, 0)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	con := &fakeConsole{in: strings.NewReader(stdin)}
	d := New(con, nil)
	d.Heaps[pid] = heap.New(0, 4096)
	d.HeapBase[pid] = 0

	regs := register.New()
	regs.Write(register.AR, ref.LogicalStart>>16)
	return d, regs, mem, pages, pid
}

func TestPrintIntWritesDecimal(t *testing.T) {
	d, regs, mem, pages, pid := newFixture(t, "")
	regs.Write(8, 0)
	regs.Write(9, 42)
	if err := d.Dispatch(pid, PrintInt, regs, mem, pages); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	got := d.Console.(*fakeConsole).out.String()
	if got != "42" {
		t.Errorf("stdout = %q, want 42", got)
	}
}

func TestHeapAllocSucceedsThenExhausts(t *testing.T) {
	d, regs, mem, pages, pid := newFixture(t, "")
	regs.Write(8, 0)
	regs.Write(9, 2048)
	if err := d.Dispatch(pid, HeapAlloc, regs, mem, pages); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if regs.Read16(8) == 0xFFFF && regs.Read16(9) == 0xFFFF {
		t.Fatalf("first allocation reported failure")
	}

	regs.Write(8, 0)
	regs.Write(9, 4096)
	if err := d.Dispatch(pid, HeapAlloc, regs, mem, pages); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if regs.Read16(8) != 0xFFFF || regs.Read16(9) != 0xFFFF {
		t.Errorf("second allocation should report -1/-1, got %04x/%04x", regs.Read16(8), regs.Read16(9))
	}
}

func TestHeapAllocUnknownProcessReportsFailure(t *testing.T) {
	d, regs, mem, pages, _ := newFixture(t, "")
	regs.Write(8, 0)
	regs.Write(9, 16)
	if err := d.Dispatch(99, HeapAlloc, regs, mem, pages); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if regs.Read16(8) != 0xFFFF || regs.Read16(9) != 0xFFFF {
		t.Errorf("unknown pid should report -1/-1, got %04x/%04x", regs.Read16(8), regs.Read16(9))
	}
}

func TestUnknownSyscallIsFatal(t *testing.T) {
	d, regs, mem, pages, pid := newFixture(t, "")
	err := d.Dispatch(pid, 200, regs, mem, pages)
	if err == nil {
		t.Fatal("Dispatch with unknown code: want error, got nil")
	}
}

func TestReadIntParsesStdin(t *testing.T) {
	d, regs, mem, pages, pid := newFixture(t, "7\n")
	if err := d.Dispatch(pid, ReadInt, regs, mem, pages); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if v := int32(uint32(regs.Read16(8))<<16 | uint32(regs.Read16(9))); v != 7 {
		t.Errorf("read value = %d, want 7", v)
	}
}

// buildDiskImage assembles a minimal single-cluster FAT16 image holding
// one root-directory file, for exercising FileOpen/FileRead's register
// convention without a reference disk image.
func buildDiskImage(t *testing.T, name, payload string) []byte {
	t.Helper()
	const (
		bytesPerSector    = 512
		sectorsPerCluster = 1
		reservedSectors   = 1
		numFATs           = 1
		rootEntryCount    = 16
		fatSize16         = 1
	)
	rootDirSectors := (rootEntryCount*32 + bytesPerSector - 1) / bytesPerSector
	fatStart := reservedSectors * bytesPerSector
	rootStart := fatStart + numFATs*fatSize16*bytesPerSector
	dataStart := rootStart + rootDirSectors*bytesPerSector
	totalSize := dataStart + bytesPerSector
	img := make([]byte, totalSize)

	bpb := img[11:]
	putU16 := func(b []byte, v uint16) { b[0], b[1] = byte(v), byte(v>>8) }
	putU16(bpb[0:2], bytesPerSector)
	bpb[2] = sectorsPerCluster
	putU16(bpb[3:5], reservedSectors)
	bpb[5] = numFATs
	putU16(bpb[6:8], rootEntryCount)
	putU16(bpb[8:10], uint16(totalSize/bytesPerSector))
	putU16(bpb[11:13], fatSize16)

	fat := img[fatStart : fatStart+fatSize16*bytesPerSector]
	putU16(fat[2*2:2*2+2], fat16.EndOfChain)

	entry := img[rootStart : rootStart+32]
	base := name
	ext := ""
	if i := strings.IndexByte(name, '.'); i >= 0 {
		base, ext = name[:i], name[i+1:]
	}
	copy(entry[0:8], []byte(base+"        ")[:8])
	copy(entry[8:11], []byte(ext+"   ")[:3])
	entry[11] = 0x20
	putU16(entry[26:28], 2)
	entry[28] = byte(len(payload))

	copy(img[dataStart:dataStart+bytesPerSector], payload)
	return img
}

func TestFileReadUsesHandleCountAndDestinationRegisters(t *testing.T) {
	img := buildDiskImage(t, "A.TXT", "hi iridium")
	fs, err := fat16.NewFileSystem(img)
	if err != nil {
		t.Fatalf("NewFileSystem: %v", err)
	}

	d, regs, mem, pages, pid := newFixture(t, "")
	d.Files = fs

	h, err := fs.Open("A.TXT")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	regs.Write(6, uint32(h))
	regs.Write(7, 10)
	regs.Write(9, 0)
	if err := d.Dispatch(pid, FileRead, regs, mem, pages); err != nil {
		t.Fatalf("Dispatch FileRead: %v", err)
	}

	got := make([]byte, 10)
	for i := 0; i < 5; i++ {
		phys, err := pages.Translate(pid, uint32(i))
		if err != nil {
			t.Fatalf("Translate(%d): %v", i, err)
		}
		w := mem.Read(phys)
		got[2*i], got[2*i+1] = byte(w>>8), byte(w)
	}
	if string(got) != "hi iridium" {
		t.Errorf("FileRead copied %q, want %q", got, "hi iridium")
	}
}

func TestBrkGrowsHeapIntoStack(t *testing.T) {
	pages := mmu.New(physmem.MinPages)
	mem := physmem.New(physmem.MinPages)
	const pid = 1
	heapRef, err := pages.Allocate(pid, mmu.Heap, 0)
	if err != nil {
		t.Fatalf("Allocate heap: %v", err)
	}
	if _, err := pages.Allocate(pid, mmu.Stack, mmu.PageSize); err != nil {
		t.Fatalf("Allocate stack: %v", err)
	}

	con := &fakeConsole{in: strings.NewReader("")}
	d := New(con, nil)
	d.HeapBase[pid] = heapRef.LogicalStart

	regs := register.New()
	regs.Write(8, 0)
	regs.Write(9, uint32(mmu.PageSize))
	if err := d.Dispatch(pid, Brk, regs, mem, pages); err != nil {
		t.Fatalf("Dispatch brk: %v", err)
	}

	found := false
	for _, e := range pages.Entries() {
		if e.ProcessID == pid && e.LogicalStart == mmu.PageSize && e.Kind == mmu.Heap {
			found = true
		}
	}
	if !found {
		t.Error("brk did not reclassify the stack page as heap")
	}
}

func TestBrkUnknownProcessFails(t *testing.T) {
	pages := mmu.New(physmem.MinPages)
	mem := physmem.New(physmem.MinPages)
	con := &fakeConsole{in: strings.NewReader("")}
	d := New(con, nil)

	regs := register.New()
	if err := d.Dispatch(5, Brk, regs, mem, pages); err == nil {
		t.Error("brk for a process with no HeapBase entry: want error, got nil")
	}
}
