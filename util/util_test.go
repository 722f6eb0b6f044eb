package util

import "testing"

func TestMin(t *testing.T) {
	if Min(3, 5) != 3 {
		t.Fatal("expected the smaller argument")
	}
	if Min(5, 3) != 3 {
		t.Fatal("expected the smaller argument regardless of order")
	}
}

func TestRounddown(t *testing.T) {
	if got := Rounddown(10, 4); got != 8 {
		t.Fatalf("Rounddown(10,4) = %d, want 8", got)
	}
	if got := Rounddown(8, 4); got != 8 {
		t.Fatalf("Rounddown(8,4) = %d, want 8 (already aligned)", got)
	}
}

func TestRoundup(t *testing.T) {
	if got := Roundup(10, 4); got != 12 {
		t.Fatalf("Roundup(10,4) = %d, want 12", got)
	}
	if got := Roundup(8, 4); got != 8 {
		t.Fatalf("Roundup(8,4) = %d, want 8 (already aligned)", got)
	}
}

func TestWritenThenReadnRoundTrip(t *testing.T) {
	buf := make([]uint8, 8)
	Writen(buf, 4, 0, 0xdeadbeef&0x7fffffff)
	got := Readn(buf, 4, 0)
	if got != 0xdeadbeef&0x7fffffff {
		t.Fatalf("Readn after Writen(4) = %#x", got)
	}

	Writen(buf, 1, 4, 0x7f)
	if got := Readn(buf, 1, 4); got != 0x7f {
		t.Fatalf("Readn after Writen(1) = %#x, want 0x7f", got)
	}
}

func TestReadnOutOfBoundsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Readn to panic on an out-of-bounds region")
		}
	}()
	Readn(make([]uint8, 2), 4, 0)
}
