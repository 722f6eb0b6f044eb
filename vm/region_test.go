package vm

import (
	"testing"

	"github.com/thanhtoan23/OS-Assignment/defs"
)

// fakeMapper is a FrameMapper stub that just counts how many vpns it was
// asked to map; it never actually touches a page table.
type fakeMapper struct {
	mapped []int
	fail   defs.Err_t
}

func (m *fakeMapper) MapAnon(mm *Mm, pid int, vpn int) defs.Err_t {
	if m.fail != 0 {
		return m.fail
	}
	m.mapped = append(m.mapped, vpn)
	return 0
}

const pageSize = 16

func TestExtendMapsPagesAndAdvancesSbrk(t *testing.T) {
	rg := NewRegions(0, 1024)
	mm := NewMm()
	mapper := &fakeMapper{}

	if err := Extend(rg, mm, 1, mapper, pageSize, 0, pageSize*2); err != 0 {
		t.Fatalf("Extend: %v", err)
	}
	if len(mapper.mapped) != 2 {
		t.Fatalf("expected 2 pages mapped, got %d", len(mapper.mapped))
	}
	vma, _ := rg.vma(0)
	if vma.Sbrk != pageSize*2 {
		t.Fatalf("sbrk = %d, want %d", vma.Sbrk, pageSize*2)
	}
}

func TestExtendPastVmEndFails(t *testing.T) {
	rg := NewRegions(0, pageSize)
	mm := NewMm()
	mapper := &fakeMapper{}

	err := Extend(rg, mm, 1, mapper, pageSize, 0, pageSize*2)
	if err != defs.ENOFREESPACE {
		t.Fatalf("err = %v, want ENOFREESPACE", err)
	}
}

func TestExtendRejectsOverlapWithSiblingVma(t *testing.T) {
	rg := NewRegions(0, 1024)
	rg.Vmas = append(rg.Vmas, NewVma(1, 64, 128))
	mm := NewMm()
	mapper := &fakeMapper{}

	// vma 0 growing from 0 to 64+ would overlap vma 1's [64,128)
	err := Extend(rg, mm, 1, mapper, pageSize, 0, 80)
	if err != defs.ENOFREESPACE {
		t.Fatalf("err = %v, want ENOFREESPACE on overlap", err)
	}
}

func TestAllocGrowsHeapOnFirstRequest(t *testing.T) {
	rg := NewRegions(0, 1024)
	mm := NewMm()
	mapper := &fakeMapper{}

	start, err := Alloc(rg, mm, 1, mapper, pageSize, 0, 0, 10)
	if err != 0 {
		t.Fatalf("Alloc: %v", err)
	}
	if start != 0 {
		t.Fatalf("start = %d, want 0", start)
	}
	if rg.Symtab[0].Start != 0 || rg.Symtab[0].End != 10 {
		t.Fatalf("symtab[0] = %+v, want [0,10)", rg.Symtab[0])
	}
}

func TestAllocReusesFreedSpanBeforeGrowingHeap(t *testing.T) {
	rg := NewRegions(0, 1024)
	mm := NewMm()
	mapper := &fakeMapper{}

	Alloc(rg, mm, 1, mapper, pageSize, 0, 0, 10) // symtab[0] = [0,10)
	Free(rg, 0, 0)
	mapper.mapped = nil // reset: a reused span must not require any new mapping

	start, err := Alloc(rg, mm, 1, mapper, pageSize, 0, 1, 10)
	if err != 0 {
		t.Fatalf("Alloc: %v", err)
	}
	if start != 0 {
		t.Fatalf("expected reuse of freed span at 0, got %d", start)
	}
	if len(mapper.mapped) != 0 {
		t.Fatalf("reusing a free span must not trigger any mapping, got %v", mapper.mapped)
	}
}

func TestAllocBestFitPrefersSmallestSufficientSpan(t *testing.T) {
	rg := NewRegions(0, 1024)
	mm := NewMm()
	mapper := &fakeMapper{}

	vma, _ := rg.vma(0)
	vma.Sbrk = 100
	vma.freeList = []VmRegion{
		{Start: 0, End: 50},  // size 50, first in list
		{Start: 50, End: 70}, // size 20, smallest sufficient
	}

	start, err := Alloc(rg, mm, 1, mapper, pageSize, 0, 0, 15)
	if err != 0 {
		t.Fatalf("Alloc: %v", err)
	}
	if start != 50 {
		t.Fatalf("expected best-fit to pick the size-20 span at 50, got %d", start)
	}
}

func TestAllocBestFitTieBreaksToFirstOccurrence(t *testing.T) {
	rg := NewRegions(0, 1024)
	mm := NewMm()
	mapper := &fakeMapper{}

	vma, _ := rg.vma(0)
	vma.Sbrk = 100
	vma.freeList = []VmRegion{
		{Start: 0, End: 20},  // size 20, first
		{Start: 50, End: 70}, // size 20, second
	}

	start, err := Alloc(rg, mm, 1, mapper, pageSize, 0, 0, 20)
	if err != 0 {
		t.Fatalf("Alloc: %v", err)
	}
	if start != 0 {
		t.Fatalf("expected tie to go to the first-occurring span at 0, got %d", start)
	}
}

func TestAllocInvalidArgsFail(t *testing.T) {
	rg := NewRegions(0, 1024)
	mm := NewMm()
	mapper := &fakeMapper{}

	if _, err := Alloc(rg, mm, 1, mapper, pageSize, 0, 0, 0); err != defs.EINVALREGION {
		t.Fatalf("zero size: err = %v, want EINVALREGION", err)
	}
	if _, err := Alloc(rg, mm, 1, mapper, pageSize, 0, MaxRegions, 10); err != defs.EINVALREGION {
		t.Fatalf("out-of-range rgid: err = %v, want EINVALREGION", err)
	}
	if _, err := Alloc(rg, mm, 1, mapper, pageSize, 99, 0, 10); err != defs.EINVALREGION {
		t.Fatalf("unknown vmaid: err = %v, want EINVALREGION", err)
	}
}

func TestFreeOnEmptySlotFails(t *testing.T) {
	rg := NewRegions(0, 1024)
	if err := Free(rg, 0, 0); err != defs.EINVALREGION {
		t.Fatalf("err = %v, want EINVALREGION", err)
	}
}

func TestFreeThenAllocRoundTrip(t *testing.T) {
	rg := NewRegions(0, 1024)
	mm := NewMm()
	mapper := &fakeMapper{}

	start, _ := Alloc(rg, mm, 1, mapper, pageSize, 0, 0, 5)
	if err := Free(rg, 0, 0); err != 0 {
		t.Fatalf("Free: %v", err)
	}
	if !rg.Symtab[0].Zero() {
		t.Fatal("expected symtab slot cleared after Free")
	}
	vma, _ := rg.vma(0)
	// Free pushes the released span at the head of the free list; spans are
	// not coalesced, so the rest of the grown heap stays a separate node.
	if len(vma.freeList) != 2 || vma.freeList[0].Start != start || vma.freeList[0].End != start+5 {
		t.Fatalf("expected freed span at the head of the free list, got %+v", vma.freeList)
	}
	again, err := Alloc(rg, mm, 1, mapper, pageSize, 0, 0, 5)
	if err != 0 || again != start {
		t.Fatalf("Alloc after Free = %v, %v; want the freed span at %v", again, err, start)
	}
}

// fakeByteIO is a ByteIO stub backed by a plain byte slice indexed by
// virtual address, standing in for the page-fault engine in Read/Write
// tests.
type fakeByteIO struct {
	mem map[int]byte
}

func newFakeByteIO() *fakeByteIO { return &fakeByteIO{mem: map[int]byte{}} }

func (f *fakeByteIO) ReadByte(mm *Mm, pid int, va int) (byte, defs.Err_t) {
	return f.mem[va], 0
}

func (f *fakeByteIO) WriteByte(mm *Mm, pid int, va int, b byte) defs.Err_t {
	f.mem[va] = b
	return 0
}

func TestReadWriteResolveThroughSymtab(t *testing.T) {
	rg := NewRegions(0, 1024)
	mm := NewMm()
	mapper := &fakeMapper{}
	io := newFakeByteIO()

	start, _ := Alloc(rg, mm, 1, mapper, pageSize, 0, 0, 10)
	if err := Write(rg, mm, 1, io, 0, 3, 0x7A); err != 0 {
		t.Fatalf("Write: %v", err)
	}
	b, err := Read(rg, mm, 1, io, 0, 3)
	if err != 0 || b != 0x7A {
		t.Fatalf("Read = %v, %v; want 0x7A, nil", b, err)
	}
	if io.mem[start+3] != 0x7A {
		t.Fatalf("expected byte written at absolute va %d", start+3)
	}
}

func TestReadWriteOutOfRegionBoundsFails(t *testing.T) {
	rg := NewRegions(0, 1024)
	mm := NewMm()
	mapper := &fakeMapper{}
	io := newFakeByteIO()

	Alloc(rg, mm, 1, mapper, pageSize, 0, 0, 10)
	if _, err := Read(rg, mm, 1, io, 0, 10); err != defs.EINVALREGION {
		t.Fatalf("err = %v, want EINVALREGION for an offset at region length", err)
	}
}
