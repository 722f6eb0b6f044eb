package vm

import (
	"fmt"

	"github.com/thanhtoan23/OS-Assignment/hashtable"
)

/// TrackNode is one entry of the global page-tracking list (spec §3's
/// PageTrack): a (VPN, PID) pair, present in the list exactly while the
/// page is resident in RAM. The owner is recorded as a PID rather than a
/// pointer to the owning Pcb, per the Design Notes' arena-by-PID pattern
/// for breaking the Pcb<->Mm<->replacement-list cycle.
type TrackNode struct {
	Vpn  int
	Pid  int
	next *TrackNode
	prev *TrackNode
}

/// TrackList is the global, circular, doubly-linked page-tracking list
/// walked by the CLOCK replacement sweep (spec §4.6.1). It carries no
/// lock of its own: callers hold the kernel Mm's mm lock for every
/// mutation and for the duration of a sweep.
//
// Membership is also indexed in a hashtable.Hashtable_t (the teacher's
// chained hash table, keyed here by a string "vpn:pid") so Append's
// duplicate check is O(1) instead of an O(n) list scan.
type TrackList struct {
	head *TrackNode // clock hand; nil when the list is empty
	size int
	seen *hashtable.Hashtable_t
}

/// NewTrackList allocates an empty tracking list.
func NewTrackList() *TrackList {
	return &TrackList{seen: hashtable.MkHash(256)}
}

func trackKey(vpn, pid int) string {
	return fmt.Sprintf("%d:%d", vpn, pid)
}

/// Len reports the number of tracked pages.
func (l *TrackList) Len() int {
	return l.size
}

/// Hand returns the node the clock hand currently points to, or nil if
/// the list is empty.
func (l *TrackList) Hand() *TrackNode {
	return l.head
}

/// Contains reports whether (vpn, pid) is currently tracked.
func (l *TrackList) Contains(vpn, pid int) bool {
	_, ok := l.seen.Get(trackKey(vpn, pid))
	return ok
}

/// Append enlists (vpn, pid), inserting just before the clock hand (i.e.
/// at the "end" of the circular order) so existing sweep order is
/// undisturbed. A page already tracked is a no-op (spec §4.6 step 5:
/// "duplicate guard: no-op if already present").
func (l *TrackList) Append(vpn, pid int) {
	if l.Contains(vpn, pid) {
		return
	}
	n := &TrackNode{Vpn: vpn, Pid: pid}
	if l.head == nil {
		n.next = n
		n.prev = n
		l.head = n
	} else {
		last := l.head.prev
		last.next = n
		n.prev = last
		n.next = l.head
		l.head.prev = n
	}
	l.size++
	l.seen.Set(trackKey(vpn, pid), n)
}

/// Remove unlinks n from the list. If n is the clock hand, the hand
/// advances to n's successor (wrapping to nil if n was the only node).
func (l *TrackList) Remove(n *TrackNode) {
	l.seen.Del(trackKey(n.Vpn, n.Pid))
	l.size--
	if n.next == n {
		l.head = nil
		return
	}
	n.prev.next = n.next
	n.next.prev = n.prev
	if l.head == n {
		l.head = n.next
	}
	n.next = nil
	n.prev = nil
}

/// Next returns n's successor in the circular order. Exported so the
/// replacement engine, in a different package, can walk the sweep
/// without reaching into TrackNode's unexported links.
func (l *TrackList) Next(n *TrackNode) *TrackNode {
	return n.next
}

/// AdvanceHand sets the clock hand to successor. The victim policies call
/// it with the elected victim's successor while the victim is still
/// linked; the victim is unlinked afterwards (spec §4.6.1: "set
/// clock_hand to its successor").
func (l *TrackList) AdvanceHand(successor *TrackNode) {
	l.head = successor
}

/// RemoveByPid unlinks every node owned by pid, used at process
/// teardown (spec §3's ownership note: the frame back-reference "must
/// be cleared before the Pcb is destroyed"). Nodes are collected before
/// any are unlinked so the walk never follows a link mutated mid-pass.
func (l *TrackList) RemoveByPid(pid int) {
	if l.head == nil {
		return
	}
	dead := make([]*TrackNode, 0, l.size)
	n := l.head
	for i := 0; i < l.size; i++ {
		if n.Pid == pid {
			dead = append(dead, n)
		}
		n = n.next
	}
	for _, n := range dead {
		l.Remove(n)
	}
}
