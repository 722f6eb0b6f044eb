package tlb

import "testing"

func TestMissThenHitUpdatesStats(t *testing.T) {
	tl := New(4, 8)
	k := Key{Vpn: 1, Pid: 1}

	if _, _, _, ok := tl.Lookup(k); ok {
		t.Fatal("expected miss before any insert")
	}
	tl.Insert(k, 42)
	fpn, dirty, referenced, ok := tl.Lookup(k)
	if !ok || fpn != 42 || dirty || referenced {
		t.Fatalf("unexpected lookup result: fpn=%d dirty=%v referenced=%v ok=%v", fpn, dirty, referenced, ok)
	}

	st := tl.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Size != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestInsertReplacesAndClearsBits(t *testing.T) {
	tl := New(4, 8)
	k := Key{Vpn: 5, Pid: 1}
	tl.Insert(k, 1)
	tl.SetDirty(k, true)
	tl.SetReferenced(k, true)

	tl.Insert(k, 2) // re-insert at same key must reset both bits
	fpn, dirty, referenced, ok := tl.Lookup(k)
	if !ok || fpn != 2 || dirty || referenced {
		t.Fatalf("re-insert should clear dirty/referenced: fpn=%d dirty=%v referenced=%v", fpn, dirty, referenced)
	}
	if tl.Stats().Size != 1 {
		t.Fatal("re-insert at the same key must not grow the resident count")
	}
}

func TestSameVpnDistinctPidDoNotAlias(t *testing.T) {
	tl := New(4, 8)
	tl.Insert(Key{Vpn: 1, Pid: 1}, 10)
	tl.Insert(Key{Vpn: 1, Pid: 2}, 20)

	fpn1, _, _, ok1 := tl.Lookup(Key{Vpn: 1, Pid: 1})
	fpn2, _, _, ok2 := tl.Lookup(Key{Vpn: 1, Pid: 2})
	if !ok1 || !ok2 || fpn1 == fpn2 {
		t.Fatalf("same vpn under different pids must resolve independently: %d vs %d", fpn1, fpn2)
	}
}

func TestLRUEvictsOldestWithinTheCollidingChain(t *testing.T) {
	// A single bucket forces vpn 1/2/3 into the same chain, so eviction
	// has nowhere to go but that chain's own LRU entry.
	tl := New(1, 2)
	tl.Insert(Key{Vpn: 1, Pid: 1}, 1)
	tl.Insert(Key{Vpn: 2, Pid: 1}, 2)
	// touch vpn 1 so vpn 2 becomes the least-recently-used entry
	tl.Lookup(Key{Vpn: 1, Pid: 1})
	tl.Insert(Key{Vpn: 3, Pid: 1}, 3)

	if _, _, _, ok := tl.Lookup(Key{Vpn: 2, Pid: 1}); ok {
		t.Fatal("expected the least-recently-used entry (vpn 2) to have been evicted")
	}
	if _, _, _, ok := tl.Lookup(Key{Vpn: 1, Pid: 1}); !ok {
		t.Fatal("expected recently-touched vpn 1 to survive eviction")
	}
	if tl.Stats().Size != 2 {
		t.Fatalf("size should stay at the chain's capacity of 2, got %d", tl.Stats().Size)
	}
}

func TestEvictionNeverCrossesBuckets(t *testing.T) {
	// Two buckets, one way each: inserting a second key into bucket 0
	// must evict only within bucket 0, never touch bucket 1's resident
	// entry, even though the table as a whole is "full".
	tl := New(2, 1)
	tl.Insert(Key{Vpn: 0, Pid: 0}, 1) // hash 0
	tl.Insert(Key{Vpn: 1, Pid: 0}, 2) // hash 1

	tl.Insert(Key{Vpn: 2, Pid: 0}, 3) // hash 0 again, evicts vpn 0 only

	if _, _, _, ok := tl.Lookup(Key{Vpn: 0, Pid: 0}); ok {
		t.Fatal("expected vpn 0 evicted from its own chain")
	}
	if _, _, _, ok := tl.Lookup(Key{Vpn: 1, Pid: 0}); !ok {
		t.Fatal("expected vpn 1, in a different bucket, to survive untouched")
	}
	if _, _, _, ok := tl.Lookup(Key{Vpn: 2, Pid: 0}); !ok {
		t.Fatal("expected the newly inserted vpn 2 present")
	}
}

func TestInvalidateEntryDropsOnlyThatKey(t *testing.T) {
	tl := New(4, 8)
	tl.Insert(Key{Vpn: 1, Pid: 1}, 1)
	tl.Insert(Key{Vpn: 2, Pid: 1}, 2)

	tl.InvalidateEntry(1, 1)

	if _, _, _, ok := tl.Lookup(Key{Vpn: 1, Pid: 1}); ok {
		t.Fatal("expected vpn 1 invalidated")
	}
	if _, _, _, ok := tl.Lookup(Key{Vpn: 2, Pid: 1}); !ok {
		t.Fatal("expected vpn 2 untouched")
	}
}

func TestInvalidateProcessDropsOnlyThatPid(t *testing.T) {
	tl := New(4, 8)
	tl.Insert(Key{Vpn: 1, Pid: 1}, 1)
	tl.Insert(Key{Vpn: 1, Pid: 2}, 2)
	tl.Insert(Key{Vpn: 2, Pid: 1}, 3)

	tl.InvalidateProcess(1)

	if _, _, _, ok := tl.Lookup(Key{Vpn: 1, Pid: 1}); ok {
		t.Fatal("expected pid 1's entries gone")
	}
	if _, _, _, ok := tl.Lookup(Key{Vpn: 2, Pid: 1}); ok {
		t.Fatal("expected pid 1's entries gone")
	}
	if _, _, _, ok := tl.Lookup(Key{Vpn: 1, Pid: 2}); !ok {
		t.Fatal("expected pid 2's entry untouched")
	}
	if tl.Stats().Size != 1 {
		t.Fatalf("expected one surviving entry, got %d", tl.Stats().Size)
	}
}

func TestSetDirtyAndReferencedMissIsNotAnError(t *testing.T) {
	tl := New(4, 8)
	// key was never inserted; these must not panic and must simply no-op
	tl.SetDirty(Key{Vpn: 99, Pid: 1}, true)
	tl.SetReferenced(Key{Vpn: 99, Pid: 1}, true)
}

func TestMaxChainTracksLongestBucket(t *testing.T) {
	tl := New(1, 16) // single bucket forces every insert into one chain
	for i := 0; i < 4; i++ {
		tl.Insert(Key{Vpn: uint64(i), Pid: 1}, i)
	}
	if st := tl.Stats(); st.MaxChain != 4 {
		t.Fatalf("maxchain = %d, want 4", st.MaxChain)
	}
}
