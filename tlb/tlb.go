// Package tlb implements the translation lookaside buffer (spec §4.3): a
// fixed-bucket-count chained hash table keyed by (vpn, pid), with LRU
// eviction on overflow and explicit invalidation hooks used by pgtbl's PTE
// writers to keep translations coherent.
//
// The bucket/chain shape and per-bucket locking are adapted from the
// teacher's Hashtable_t (hashtable/hashtable.go): one sync.Mutex per
// bucket rather than one lock for the whole table. Unlike Hashtable_t,
// chains are not kept in hash order (new entries go at the chain head),
// and this table stores a fixed struct instead
// of interface{} keys/values (a TLB entry's fields are always the same
// five), and chains are singly linked without the lock-free atomic
// pointer tricks, since every table mutation here also needs to update
// LRU bookkeeping under the same lock.
package tlb

import "sync"

/// Key identifies one translation: a virtual page number owned by one
/// process (spec §4.3 — TLB entries are tagged by pid to avoid
/// cross-process aliasing).
type Key struct {
	Vpn uint64
	Pid int
}

type entry struct {
	key        Key
	fpn        int
	dirty      bool
	referenced bool
	lastUsed   uint64
	next       *entry
}

type bucket struct {
	sync.Mutex
	first *entry
}

/// TLB is the whole translation cache: nbuckets chains, each holding up
/// to ways entries before an insert evicts that chain's own LRU entry
/// (spec §4.5: insert-on-miss finds the *chain's* LRU victim).
type TLB struct {
	buckets []*bucket
	ways    int // max resident entries per bucket before eviction

	mu       sync.Mutex // guards count, clock and stats; buckets guard their own chains
	count    int
	clock    uint64
	hits     uint64
	misses   uint64
	maxchain int
}

/// New builds a TLB with nbuckets chains, each holding up to ways
/// entries before an insert must evict within that chain.
func New(nbuckets, ways int) *TLB {
	t := &TLB{
		buckets: make([]*bucket, nbuckets),
		ways:    ways,
	}
	for i := range t.buckets {
		t.buckets[i] = &bucket{}
	}
	return t
}

// hash mirrors tlb.c's tlb_hash: (vpn xor pid) mod table size.
func (t *TLB) hash(k Key) int {
	h := k.Vpn ^ uint64(uint32(k.Pid))
	return int(h % uint64(len(t.buckets)))
}

/// Lookup returns the (fpn, dirty, referenced) triple for key, marking it
/// most-recently-used on a hit (spec §4.3).
func (t *TLB) Lookup(key Key) (fpn int, dirty bool, referenced bool, ok bool) {
	b := t.buckets[t.hash(key)]
	b.Lock()
	defer b.Unlock()

	for e := b.first; e != nil; e = e.next {
		if e.key == key {
			t.mu.Lock()
			t.clock++
			e.lastUsed = t.clock
			t.hits++
			t.mu.Unlock()
			return e.fpn, e.dirty, e.referenced, true
		}
	}
	t.mu.Lock()
	t.misses++
	t.mu.Unlock()
	return 0, false, false, false
}

/// Insert installs or replaces the mapping for key. On a miss, if key's
/// chain is already at capacity, that chain's own least-recently-used
/// entry is evicted first — never an entry from another bucket
/// (tlb.c's tlb_find_lru_victim only ever walks entries[index]).
func (t *TLB) Insert(key Key, fpn int) {
	b := t.buckets[t.hash(key)]
	b.Lock()
	defer b.Unlock()

	for e := b.first; e != nil; e = e.next {
		if e.key == key {
			t.mu.Lock()
			t.clock++
			e.fpn = fpn
			e.lastUsed = t.clock
			e.dirty = false
			e.referenced = false
			t.mu.Unlock()
			return
		}
	}

	if t.ways > 0 {
		t.evictChainLRULocked(b)
	}

	t.mu.Lock()
	t.clock++
	n := &entry{key: key, fpn: fpn, lastUsed: t.clock, next: b.first}
	b.first = n
	t.count++
	chain := 0
	for e := b.first; e != nil; e = e.next {
		chain++
	}
	if chain > t.maxchain {
		t.maxchain = chain
	}
	t.mu.Unlock()
}

// evictChainLRULocked removes b's own least-recently-used entry if b is
// already holding t.ways entries. Caller must hold b's lock.
func (t *TLB) evictChainLRULocked(b *bucket) {
	chain := 0
	var victim *entry
	var oldest uint64
	for e := b.first; e != nil; e = e.next {
		chain++
		if victim == nil || e.lastUsed < oldest {
			oldest = e.lastUsed
			victim = e
		}
	}
	if chain < t.ways || victim == nil {
		return
	}

	var prev *entry
	for e := b.first; e != nil; e = e.next {
		if e == victim {
			if prev == nil {
				b.first = e.next
			} else {
				prev.next = e.next
			}
			t.mu.Lock()
			t.count--
			t.mu.Unlock()
			return
		}
		prev = e
	}
}

func (t *TLB) removeFrom(b *bucket, key Key) {
	b.Lock()
	defer b.Unlock()
	var prev *entry
	for e := b.first; e != nil; e = e.next {
		if e.key == key {
			if prev == nil {
				b.first = e.next
			} else {
				prev.next = e.next
			}
			t.mu.Lock()
			t.count--
			t.mu.Unlock()
			return
		}
		prev = e
	}
}

/// InvalidateEntry drops the entry for (vpn, pid) if present. Implements
/// pgtbl.Invalidator so the page table's PTE writers can keep this TLB
/// coherent without importing it (spec §4.5).
func (t *TLB) InvalidateEntry(vpn uint64, pid int) {
	key := Key{Vpn: vpn, Pid: pid}
	b := t.buckets[t.hash(key)]
	t.removeFrom(b, key)
}

/// InvalidateProcess drops every entry belonging to pid, used when a
/// process exits and its address space is torn down (spec §4.3).
func (t *TLB) InvalidateProcess(pid int) {
	for _, b := range t.buckets {
		b.Lock()
		var kept *entry
		removed := 0
		for e := b.first; e != nil; e = e.next {
			if e.key.Pid == pid {
				removed++
				continue
			}
			e.next = kept
			kept = e
		}
		b.first = kept
		b.Unlock()
		if removed > 0 {
			t.mu.Lock()
			t.count -= removed
			t.mu.Unlock()
		}
	}
}

/// SetDirty marks key's entry dirty, if resident. A TLB miss is not an
/// error here: the caller falls back to the page table as the source of
/// truth (spec §4.3).
func (t *TLB) SetDirty(key Key, dirty bool) {
	b := t.buckets[t.hash(key)]
	b.Lock()
	defer b.Unlock()
	for e := b.first; e != nil; e = e.next {
		if e.key == key {
			e.dirty = dirty
			return
		}
	}
}

/// SetReferenced marks key's entry referenced, if resident.
func (t *TLB) SetReferenced(key Key, referenced bool) {
	b := t.buckets[t.hash(key)]
	b.Lock()
	defer b.Unlock()
	for e := b.first; e != nil; e = e.next {
		if e.key == key {
			e.referenced = referenced
			return
		}
	}
}

/// Stats is a snapshot of TLB performance counters (spec §4.3: hit,
/// miss, size, maxchain).
type Stats struct {
	Hits     uint64
	Misses   uint64
	Size     int
	MaxChain int
}

/// Stats returns a snapshot of the counters accumulated since New.
func (t *TLB) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Stats{Hits: t.hits, Misses: t.misses, Size: t.count, MaxChain: t.maxchain}
}
