package mem

import "testing"

func TestFormatRejectsUnevenPageSize(t *testing.T) {
	d := NewDevice(10, false)
	if err := d.Format(3); err == nil {
		t.Fatal("expected an error when page size does not evenly divide device size")
	}
}

func TestFormatPopulatesFreeListAscending(t *testing.T) {
	d := NewDevice(12, false)
	if err := d.Format(4); err != nil {
		t.Fatalf("Format: %v", err)
	}
	if d.NumFrames() != 3 {
		t.Fatalf("NumFrames = %d, want 3", d.NumFrames())
	}
	if d.FreeCount() != 3 {
		t.Fatalf("FreeCount = %d, want 3", d.FreeCount())
	}
	for i := 0; i < 3; i++ {
		fp, ok := d.GetFreeFrame()
		if !ok || fp != Fpn_t(i) {
			t.Fatalf("frame %d = %v (ok=%v), want %d", i, fp, ok, i)
		}
	}
	if _, ok := d.GetFreeFrame(); ok {
		t.Fatal("expected no frames left")
	}
}

func TestGetPutNeverDoubleHandsOutAFrame(t *testing.T) {
	d := NewDevice(8, false)
	d.Format(4)

	fp, ok := d.GetFreeFrame()
	if !ok {
		t.Fatal("expected a free frame")
	}
	// second get must return the other frame, not fp again
	fp2, ok := d.GetFreeFrame()
	if !ok || fp2 == fp {
		t.Fatalf("expected a distinct frame, got %v and %v", fp, fp2)
	}
	d.PutFreeFrame(fp)
	fp3, ok := d.GetFreeFrame()
	if !ok || fp3 != fp {
		t.Fatalf("expected put-then-get to return the same frame, got %v", fp3)
	}
}

func TestReadWriteRoundTripNonSequential(t *testing.T) {
	d := NewDevice(16, false)
	d.Format(8)
	if err := d.Write(5, 0xAB); err != nil {
		t.Fatalf("Write: %v", err)
	}
	b, err := d.Read(5)
	if err != nil || b != 0xAB {
		t.Fatalf("Read = %v, %v; want 0xAB, nil", b, err)
	}
}

func TestReadWriteOutOfRangeFails(t *testing.T) {
	d := NewDevice(8, false)
	d.Format(8)
	if _, err := d.Read(100); err == nil {
		t.Fatal("expected out-of-range read to fail")
	}
	if err := d.Write(-1, 1); err == nil {
		t.Fatal("expected out-of-range write to fail")
	}
}

func TestSequentialDeviceRoundTrip(t *testing.T) {
	d := NewDevice(16, true)
	d.Format(8)
	if err := d.Write(10, 0x42); err != nil {
		t.Fatalf("Write: %v", err)
	}
	b, err := d.Read(10)
	if err != nil || b != 0x42 {
		t.Fatalf("Read = %v, %v; want 0x42, nil", b, err)
	}
}

func TestFrameAddrScalesByPageSize(t *testing.T) {
	d := NewDevice(32, false)
	d.Format(8)
	if d.FrameAddr(3) != 24 {
		t.Fatalf("FrameAddr(3) = %d, want 24", d.FrameAddr(3))
	}
}

func TestDumpNonZeroSkipsZeroBytes(t *testing.T) {
	d := NewDevice(8, false)
	d.Format(8)
	d.Write(2, 9)
	d.Write(6, 3)

	dump := d.DumpNonZero()
	if len(dump) != 2 {
		t.Fatalf("expected 2 non-zero bytes, got %d", len(dump))
	}
	if dump[0].Addr != 2 || dump[0].Value != 9 {
		t.Fatalf("unexpected first entry: %+v", dump[0])
	}
	if dump[1].Addr != 6 || dump[1].Value != 3 {
		t.Fatalf("unexpected second entry: %+v", dump[1])
	}
}

func TestFreeFramesIsASnapshotCopy(t *testing.T) {
	d := NewDevice(8, false)
	d.Format(4)
	snap := d.FreeFrames()
	d.GetFreeFrame()
	if len(snap) != 2 {
		t.Fatalf("snapshot should be unaffected by later mutation, got len %d", len(snap))
	}
	if d.FreeCount() != 1 {
		t.Fatalf("FreeCount should reflect the mutation, got %d", d.FreeCount())
	}
}
