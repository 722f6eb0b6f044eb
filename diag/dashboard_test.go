package diag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/thanhtoan23/OS-Assignment/mem"
	"github.com/thanhtoan23/OS-Assignment/proc"
	"github.com/thanhtoan23/OS-Assignment/tlb"
)

func TestBarFillsProportionallyToUsage(t *testing.T) {
	if got := bar(0, 10, 10); got != strings.Repeat("-", 10) {
		t.Fatalf("bar(0,10,10) = %q, want all dashes", got)
	}
	if got := bar(10, 10, 10); got != strings.Repeat("#", 10) {
		t.Fatalf("bar(10,10,10) = %q, want all hashes", got)
	}
	if got := bar(5, 10, 10); got != "#####-----" {
		t.Fatalf("bar(5,10,10) = %q", got)
	}
}

func TestBarHandlesZeroTotal(t *testing.T) {
	if got := bar(0, 0, 10); got != "" {
		t.Fatalf("bar with zero total = %q, want empty", got)
	}
}

func TestDashboardRenderIncludesTickRamAndTlbLines(t *testing.T) {
	ram := mem.NewDevice(16, false)
	ram.Format(16)
	tl := tlb.New(4, 4)
	procs := proc.NewTable()
	procs.Add(proc.New(1, 0, 0, 10, 0, 1024))

	var buf bytes.Buffer
	d := NewDashboard(&buf)
	d.Render(42, ram, tl, procs)

	out := buf.String()
	if !strings.Contains(out, "tick 42") {
		t.Fatalf("expected tick line, got:\n%s", out)
	}
	if !strings.Contains(out, "procs live=1") {
		t.Fatalf("expected live process count, got:\n%s", out)
	}
}
