package diag

import (
	"fmt"
	"io"
	"log"

	"github.com/thanhtoan23/OS-Assignment/caller"
	"github.com/thanhtoan23/OS-Assignment/circbuf"
)

/// Recorder is the page-fault audit trail: a ring of recent fault
/// events (Design Notes: "what got evicted and why") plus a
/// once-per-call-chain reporter for TLB/page-table coherence
/// violations, should one ever be tripped by a bug in pgtbl's writers.
type Recorder struct {
	Events     *circbuf.Circbuf_t
	coherence  *caller.Coherence
}

/// NewRecorder allocates a Recorder with room for backlog recent events.
func NewRecorder(backlog int) *Recorder {
	return &Recorder{
		Events:    circbuf.New(backlog),
		coherence: &caller.Coherence{Enabled: true},
	}
}

/// Record appends one page-fault event to the ring.
func (r *Recorder) Record(e circbuf.Event) {
	r.Events.Push(e)
}

/// DumpRecent writes the backlog's most recent n events (0 = all).
func (r *Recorder) DumpRecent(w io.Writer, n int) {
	for _, e := range r.Events.Recent(n) {
		fmt.Fprintf(w, "tick=%d pid=%d vpn=%d fpn=%d evicted=%v swapin=%v\n",
			e.Tick, e.Pid, e.Vpn, e.Fpn, e.Evicted, e.SwapIn)
	}
}

/// ReportIncoherence should be called from any code path that detects a
/// TLB entry diverging from its PTE (spec §4.5's coherence invariant).
/// It logs once per distinct call chain rather than flooding the log on
/// every subsequent translation through the same broken path.
func (r *Recorder) ReportIncoherence(msg string) {
	if first, trace := r.coherence.Report(); first {
		log.Printf("tlb/pte incoherence: %s\n%s", msg, trace)
	}
}
