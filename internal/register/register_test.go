package register

import "testing"

func TestZeroRegisterSink(t *testing.T) {
	f := New()
	f.Write(0, 0xDEADBEEF)
	if got := f.Read(0); got != 0 {
		t.Errorf("Read(0) = 0x%X, want 0", got)
	}
}

func TestGeneralRegisterMasksTo16Bits(t *testing.T) {
	f := New()
	f.Write(1, 0x0001FFFF)
	if got := f.Read(1); got != 0xFFFF {
		t.Errorf("Read(1) = 0x%X, want 0xFFFF", got)
	}
}

func TestAddrWideRegisterKeeps32Bits(t *testing.T) {
	for _, idx := range []int{AR, SP, FP, RA} {
		f := New()
		f.Write(idx, 0xCAFEBABE)
		if got := f.Read(idx); got != 0xCAFEBABE {
			t.Errorf("Read(%d) = 0x%X, want 0xCAFEBABE", idx, got)
		}
	}
}

func TestReset(t *testing.T) {
	f := New()
	f.Write(SP, 0x1234)
	f.Reset()
	if got := f.Read(SP); got != 0 {
		t.Errorf("Read(SP) after Reset = 0x%X, want 0", got)
	}
}

func TestLoadForcesZeroRegisterBackToZero(t *testing.T) {
	f := New()
	var snap [Count]uint32
	snap[0] = 0x1111
	snap[RA] = 0x2000
	f.Load(snap)
	if got := f.Read(0); got != 0 {
		t.Errorf("Read(0) after Load = 0x%X, want 0", got)
	}
	if got := f.Read(RA); got != 0x2000 {
		t.Errorf("Read(RA) after Load = 0x%X, want 0x2000", got)
	}
}

func TestRead16TruncatesAddrWideRegister(t *testing.T) {
	f := New()
	f.Write(RA, 0x00012345)
	if got := f.Read16(RA); got != 0x2345 {
		t.Errorf("Read16(RA) = 0x%X, want 0x2345", got)
	}
}
