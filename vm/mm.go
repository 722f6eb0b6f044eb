// Package vm implements the per-process virtual memory area and region
// allocator (spec §4.4) together with the Mm type that roots a process's
// page table and, for the one kernel-owned instance, the global
// page-tracking list consumed by the replacement engine (spec §4.8: "the
// kernel-global Mm used to hold the replacement list and clock hand").
//
// The lock-handle pattern (embedded mutex plus Lock_x/Unlock_x/
// Lockassert_x methods recording whether the lock is held) is carried
// over from the teacher's Vm_t in biscuit/src/vm/as.go, generalized from
// one address-space lock to the spec's two distinct locks: the region
// lock (Regions) and the mm lock (Mm).
package vm

import (
	"sync"

	"github.com/thanhtoan23/OS-Assignment/pgtbl"
)

/// Mm roots one process's five-level page table. The mm lock (its
/// embedded mutex) guards every page-table traversal that may allocate,
/// every PTE write, and — on the one kernel-owned Mm — the global
/// page-tracking list (spec §5, lock position 3).
type Mm struct {
	sync.Mutex

	pt        *pgtbl.Table
	lockTaken bool

	// track (which also holds the clock hand) is populated only on the
	// kernel-global Mm used by the page-fault engine's CLOCK sweep; a
	// per-process Mm leaves it nil.
	track *TrackList
}

/// NewMm allocates a fresh per-process Mm with an empty page table.
func NewMm() *Mm {
	return &Mm{pt: pgtbl.New()}
}

/// NewKernelMm allocates the one Mm instance that backs the simulator's
/// global replacement list and clock hand.
func NewKernelMm() *Mm {
	return &Mm{pt: pgtbl.New(), track: NewTrackList()}
}

/// Table returns the page table rooted at this Mm.
func (mm *Mm) Table() *pgtbl.Table {
	return mm.pt
}

/// Track returns the global page-tracking list. Only valid on the
/// kernel-global Mm; callers must not call this on a per-process Mm.
func (mm *Mm) Track() *TrackList {
	if mm.track == nil {
		panic("vm: Track called on a non-kernel Mm")
	}
	return mm.track
}

/// Lock_mm acquires the mm lock and marks it held, mirroring the
/// teacher's Lock_pmap.
func (mm *Mm) Lock_mm() {
	mm.Lock()
	mm.lockTaken = true
}

/// Unlock_mm releases the mm lock.
func (mm *Mm) Unlock_mm() {
	mm.lockTaken = false
	mm.Unlock()
}

/// Lockassert_mm panics if the mm lock is not held by the caller.
func (mm *Mm) Lockassert_mm() {
	if !mm.lockTaken {
		panic("mm lock must be held")
	}
}
