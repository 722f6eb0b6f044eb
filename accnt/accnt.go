// Package accnt accumulates per-process execution accounting: how many
// instructions a Pcb has executed and how many scheduler ticks it has
// consumed. Adapted from the teacher's Accnt_t (biscuit/src/accnt/accnt.go),
// which accumulates wall-clock user/system nanoseconds under a mutex with
// atomic counter adds; this simulator has no wall clock of its own, so the
// two nanosecond counters become two simulation-tick counters fed
// explicitly by the kernel's CPU worker loop.
package accnt

import "sync"
import "sync/atomic"

/// Accnt_t accumulates one process's instruction and tick counts. The
/// embedded mutex lets Snapshot/Add take a consistent pair of values;
/// the per-field adds use atomics so the common case (a CPU worker
/// ticking its own process) needs no lock.
type Accnt_t struct {
	sync.Mutex
	Instrs int64
	Ticks  int64
}

/// AddInstr records n more instructions executed.
func (a *Accnt_t) AddInstr(n int) {
	atomic.AddInt64(&a.Instrs, int64(n))
}

/// AddTicks records n more scheduler ticks consumed.
func (a *Accnt_t) AddTicks(n int) {
	atomic.AddInt64(&a.Ticks, int64(n))
}

/// Add merges another record into this one.
func (a *Accnt_t) Add(n *Accnt_t) {
	a.Lock()
	a.Instrs += atomic.LoadInt64(&n.Instrs)
	a.Ticks += atomic.LoadInt64(&n.Ticks)
	a.Unlock()
}

/// Snapshot returns a consistent (instrs, ticks) pair.
func (a *Accnt_t) Snapshot() (int64, int64) {
	a.Lock()
	defer a.Unlock()
	return a.Instrs, a.Ticks
}
