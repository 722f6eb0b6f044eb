package vm

import "testing"

func TestUioWriteThenReadRoundTrip(t *testing.T) {
	rg := NewRegions(0, 1024)
	mm := NewMm()
	mapper := &fakeMapper{}
	io := newFakeByteIO()

	Alloc(rg, mm, 1, mapper, pageSize, 0, 0, 16)

	wbuf := NewRegionBuf(rg, mm, 1, io, 0, 16)
	src := []byte("hello, world!!!!")
	n, err := wbuf.Uiowrite(src)
	if err != 0 || n != len(src) {
		t.Fatalf("Uiowrite = %d, %v; want %d, nil", n, err, len(src))
	}
	if wbuf.Remain() != 0 {
		t.Fatalf("expected buffer drained, Remain = %d", wbuf.Remain())
	}

	rbuf := NewRegionBuf(rg, mm, 1, io, 0, 16)
	dst := make([]byte, 16)
	n, err = rbuf.Uioread(dst)
	if err != 0 || n != 16 {
		t.Fatalf("Uioread = %d, %v; want 16, nil", n, err)
	}
	if string(dst) != string(src) {
		t.Fatalf("round trip mismatch: got %q, want %q", dst, src)
	}
}

func TestUioreadStopsAtBufferLength(t *testing.T) {
	rg := NewRegions(0, 1024)
	mm := NewMm()
	mapper := &fakeMapper{}
	io := newFakeByteIO()
	Alloc(rg, mm, 1, mapper, pageSize, 0, 0, 4)

	buf := NewRegionBuf(rg, mm, 1, io, 0, 4)
	dst := make([]byte, 10)
	n, err := buf.Uioread(dst)
	if err != 0 || n != 4 {
		t.Fatalf("Uioread = %d, %v; want 4, nil", n, err)
	}
	if buf.Remain() != 0 {
		t.Fatalf("Remain = %d, want 0", buf.Remain())
	}
}

func TestTotalszReportsConfiguredLength(t *testing.T) {
	rg := NewRegions(0, 1024)
	mm := NewMm()
	io := newFakeByteIO()
	buf := NewRegionBuf(rg, mm, 1, io, 0, 123)
	if buf.Totalsz() != 123 {
		t.Fatalf("Totalsz = %d, want 123", buf.Totalsz())
	}
}
