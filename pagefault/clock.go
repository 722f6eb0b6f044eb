package pagefault

import (
	"github.com/thanhtoan23/OS-Assignment/defs"
	"github.com/thanhtoan23/OS-Assignment/vm"
)

/// VictimPolicy selects the next page to evict from the kernel-global
/// page-tracking list when RAM is full (spec §4.6.1's Open Question:
/// "the replacement policy is CLOCK-with-second-chance by default, but
/// a strict-FIFO variant is a legitimate configuration for
/// experimentation"). SelectVictim only elects a candidate and advances
/// the clock hand past it; it must not unlink the candidate node from
/// tl, since obtainFrame may yet fail to swap it out. obtainFrame calls
/// tl.Remove itself once the eviction actually commits. Stale entries
/// encountered along the way (dead owner, page no longer present) are a
/// different matter and may be unlinked immediately: they are garbage,
/// not evictable candidates, and dropping them can never be undone by a
/// failed swap-out.
type VictimPolicy interface {
	SelectVictim(tl *vm.TrackList, procs ProcTable) (node *vm.TrackNode, err defs.Err_t)
}

/// clockVictimPolicy is the default: CLOCK-with-second-chance.
type clockVictimPolicy struct{}

// SelectVictim walks the circular page-tracking list from the clock
// hand: present-but-unreferenced pages are evicted immediately;
// referenced pages have their bit cleared and are skipped.
//
// No revolution counter is needed: because the sweep always advances to
// node.Next and the list is circular, a page whose REFERENCED bit this
// sweep already cleared will be unreferenced the next time the hand
// reaches it, which happens within one further lap. The loop bound below
// is a pure safety net against a logic error turning this into an
// infinite loop, not part of the algorithm itself.
func (clockVictimPolicy) SelectVictim(tl *vm.TrackList, procs ProcTable) (node *vm.TrackNode, err defs.Err_t) {
	if tl.Len() == 0 {
		return nil, defs.EREPLACEMENTMISS
	}

	n := tl.Hand()
	limit := 2*tl.Len() + 2
	for i := 0; i < limit && n != nil; i++ {
		next := tl.Next(n)
		wasOnly := next == n

		mm, ok := procs.MmFor(n.Pid)
		if !ok {
			tl.Remove(n)
			if wasOnly {
				break
			}
			n = next
			continue
		}
		pte, ok := mm.Table().Lookup(uint64(n.Vpn), false)
		if !ok || !pte.Present() {
			tl.Remove(n)
			if wasOnly {
				break
			}
			n = next
			continue
		}
		if pte.Referenced() {
			mm.Table().ClearReferenced(uint64(n.Vpn))
			n = next
			continue
		}

		tl.AdvanceHand(next)
		return n, 0
	}

	// Unreachable under the algorithm above; fall back to electing the
	// current hand outright rather than looping forever.
	if h := tl.Hand(); h != nil {
		tl.AdvanceHand(tl.Next(h))
		return h, 0
	}
	return nil, defs.EREPLACEMENTMISS
}

/// fifoVictimPolicy always evicts the oldest still-present tracked page
/// (the node at the hand), ignoring the REFERENCED bit entirely. Stale
/// entries (dead owner, no longer present) are dropped the same way the
/// CLOCK policy drops them, without counting as an eviction.
type fifoVictimPolicy struct{}

func (fifoVictimPolicy) SelectVictim(tl *vm.TrackList, procs ProcTable) (node *vm.TrackNode, err defs.Err_t) {
	if tl.Len() == 0 {
		return nil, defs.EREPLACEMENTMISS
	}

	n := tl.Hand()
	limit := tl.Len() + 1
	for i := 0; i < limit && n != nil; i++ {
		next := tl.Next(n)
		wasOnly := next == n

		mm, ok := procs.MmFor(n.Pid)
		if !ok {
			tl.Remove(n)
			if wasOnly {
				break
			}
			n = next
			continue
		}
		pte, ok := mm.Table().Lookup(uint64(n.Vpn), false)
		if !ok || !pte.Present() {
			tl.Remove(n)
			if wasOnly {
				break
			}
			n = next
			continue
		}

		tl.AdvanceHand(next)
		return n, 0
	}
	return nil, defs.EREPLACEMENTMISS
}

// findVictim dispatches to the engine's configured policy, defaulting to
// CLOCK-with-second-chance when none was set. The returned node is still
// linked into the tracking list; the caller must hold the kernel Mm
// lock and is responsible for calling tl.Remove once it commits to
// evicting it.
func (e *Engine) findVictim() (node *vm.TrackNode, err defs.Err_t) {
	policy := e.Policy
	if policy == nil {
		policy = clockVictimPolicy{}
	}
	return policy.SelectVictim(e.kernelMm.Track(), e.Procs)
}
