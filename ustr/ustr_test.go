package ustr

import "testing"

func TestExtendStrJoinsWithASlash(t *testing.T) {
	got := MkUstr().ExtendStr("input").ExtendStr("proc").String()
	if got != "/input/proc" {
		t.Fatalf("Extend chain = %q, want %q", got, "/input/proc")
	}
}

func TestIsdotAndIsdotdot(t *testing.T) {
	if !MkUstrDot().Isdot() {
		t.Fatal("expected \".\" to report Isdot")
	}
	if !DotDot.Isdotdot() {
		t.Fatal("expected DotDot to report Isdotdot")
	}
	if MkUstrDot().Isdotdot() {
		t.Fatal("\".\" must not report Isdotdot")
	}
}

func TestEqComparesByteContent(t *testing.T) {
	a := Ustr("abc")
	b := Ustr("abc")
	c := Ustr("abd")
	if !a.Eq(b) {
		t.Fatal("expected equal byte content to compare equal")
	}
	if a.Eq(c) {
		t.Fatal("expected differing byte content to compare unequal")
	}
}

func TestIsAbsolute(t *testing.T) {
	if !MkUstrRoot().IsAbsolute() {
		t.Fatal("expected \"/\" to be absolute")
	}
	if MkUstrDot().IsAbsolute() {
		t.Fatal("expected \".\" to not be absolute")
	}
	if MkUstr().IsAbsolute() {
		t.Fatal("expected an empty Ustr to not be absolute")
	}
}

func TestMkUstrSliceTruncatesAtNul(t *testing.T) {
	buf := []uint8{'f', 'o', 'o', 0, 'x', 'x'}
	got := MkUstrSlice(buf)
	if got.String() != "foo" {
		t.Fatalf("MkUstrSlice = %q, want %q", got.String(), "foo")
	}
}

func TestIndexByte(t *testing.T) {
	us := Ustr("a/b/c")
	if idx := us.IndexByte('/'); idx != 1 {
		t.Fatalf("IndexByte('/') = %d, want 1", idx)
	}
	if idx := us.IndexByte('z'); idx != -1 {
		t.Fatalf("IndexByte('z') = %d, want -1", idx)
	}
}
