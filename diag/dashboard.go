package diag

import (
	"fmt"
	"io"

	"github.com/charmbracelet/x/ansi"

	"github.com/thanhtoan23/OS-Assignment/mem"
	"github.com/thanhtoan23/OS-Assignment/proc"
	"github.com/thanhtoan23/OS-Assignment/tlb"
)

/// Dashboard redraws a single-screen live view of the simulator's state
/// in place, using raw ANSI cursor/erase sequences rather than a full
/// TUI framework, since the only requirement is "watch it run" (the
/// -watch flag), not interactive input.
type Dashboard struct {
	out io.Writer
}

/// NewDashboard wraps out (normally os.Stdout) for repeated redraws.
func NewDashboard(out io.Writer) *Dashboard {
	return &Dashboard{out: out}
}

/// Render repaints the dashboard: current tick, RAM occupancy, TLB hit
/// rate, and live process count.
func (d *Dashboard) Render(tick int64, ram *mem.Device, t *tlb.TLB, procs *proc.Table) {
	io.WriteString(d.out, ansi.EraseEntireScreen+ansi.CursorPosition(1, 1))

	s := t.Stats()
	total := s.Hits + s.Misses
	hitPct := 0.0
	if total > 0 {
		hitPct = 100 * float64(s.Hits) / float64(total)
	}
	used := ram.NumFrames() - ram.FreeCount()

	fmt.Fprintf(d.out, "tick %d\n", tick)
	fmt.Fprintf(d.out, "ram   %s/%d frames used\n", bar(used, ram.NumFrames(), 30), ram.NumFrames())
	fmt.Fprintf(d.out, "tlb   hits=%d misses=%d (%.1f%% hit rate)\n", s.Hits, s.Misses, hitPct)
	fmt.Fprintf(d.out, "procs live=%d\n", procs.Len())
}

// bar renders a fixed-width ASCII occupancy bar; the dashboard draws in
// a plain terminal, so it avoids block-drawing glyphs that would need
// the width-aware padding DumpPageTable uses for hex tables.
func bar(used, total, width int) string {
	if total <= 0 {
		return ""
	}
	filled := used * width / total
	if filled > width {
		filled = width
	}
	b := make([]byte, width)
	for i := range b {
		if i < filled {
			b[i] = '#'
		} else {
			b[i] = '-'
		}
	}
	return string(b)
}
