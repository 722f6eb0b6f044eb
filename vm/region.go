package vm

import (
	"sync"

	"github.com/thanhtoan23/OS-Assignment/defs"
	"github.com/thanhtoan23/OS-Assignment/util"
)

/// MaxRegions bounds the per-process symbol table (spec §3: "symbol
/// table of up to N regions").
const MaxRegions = 32

/// VmRegion is a half-open virtual address span (spec §3). The zero
/// value means "vacant" wherever it appears as a symbol-table slot.
type VmRegion struct {
	Start int
	End   int
}

/// Zero reports whether r is the vacant sentinel.
func (r VmRegion) Zero() bool { return r.Start == 0 && r.End == 0 }

/// Size returns the span's length in bytes.
func (r VmRegion) Size() int { return r.End - r.Start }

/// Vma is one virtual memory area (spec §3): a contiguous span governed
/// by a single sbrk high-water mark and its own free-region list.
type Vma struct {
	Id      int
	VmStart int
	VmEnd   int
	Sbrk    int

	// freeList holds unallocated spans within [VmStart, Sbrk). free()
	// pushes at index 0 (the head); heap growth appends at the tail
	// (spec §4.4).
	freeList []VmRegion
}

/// NewVma creates vma id spanning [start, end) with sbrk initially at
/// start (an empty heap).
func NewVma(id, start, end int) *Vma {
	return &Vma{Id: id, VmStart: start, VmEnd: end, Sbrk: start}
}

// bestFit scans the free list for the smallest node whose span is >=
// size, tie-broken by list order (spec §4.4 step 2): the first node
// encountered among equally-sized candidates wins, since a later
// candidate only replaces the current pick when it is strictly smaller.
func (v *Vma) bestFit(size int) (idx int, start int, ok bool) {
	best := -1
	bestSize := 0
	for i, r := range v.freeList {
		sz := r.Size()
		if sz < size {
			continue
		}
		if best == -1 || sz < bestSize {
			best = i
			bestSize = sz
		}
	}
	if best == -1 {
		return 0, 0, false
	}
	return best, v.freeList[best].Start, true
}

func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

/// Regions is the region-lock-guarded half of a process's address space:
/// its VMAs and its symbol table (spec §5, lock position 2). Kept
/// separate from Mm, which is guarded by the distinct mm lock, so the
/// two can be acquired and released independently per the spec's
/// "release region lock before calling into the page-fault engine" rule.
type Regions struct {
	sync.Mutex
	lockTaken bool

	Vmas   []*Vma
	Symtab [MaxRegions]VmRegion
}

/// NewRegions allocates an empty Regions with vma 0 spanning
/// [heapStart, heapEnd) (spec §3: "vma 0" is created at Mm init).
func NewRegions(heapStart, heapEnd int) *Regions {
	r := &Regions{}
	r.Vmas = append(r.Vmas, NewVma(0, heapStart, heapEnd))
	return r
}

/// Lock_region acquires the region lock.
func (r *Regions) Lock_region() {
	r.Lock()
	r.lockTaken = true
}

/// Unlock_region releases the region lock.
func (r *Regions) Unlock_region() {
	r.lockTaken = false
	r.Unlock()
}

/// Lockassert_region panics if the region lock is not held.
func (r *Regions) Lockassert_region() {
	if !r.lockTaken {
		panic("region lock must be held")
	}
}

func (r *Regions) vma(id int) (*Vma, bool) {
	for _, v := range r.Vmas {
		if v.Id == id {
			return v, true
		}
	}
	return nil, false
}

/// FrameMapper is implemented by the page-fault engine so the region
/// allocator can eagerly map newly-grown heap pages without importing
/// that package (dependency inversion, as with pgtbl.Invalidator).
type FrameMapper interface {
	MapAnon(mm *Mm, pid int, vpn int) defs.Err_t
}

/// Extend implements vm_area_extend (spec §4.4): it refuses an extension
/// that would overlap a sibling vma, then maps incAligned/pageSize fresh
/// pages via mapper (which may itself trigger replacement, §4.6) before
/// advancing sbrk.
func Extend(rg *Regions, mm *Mm, pid int, mapper FrameMapper, pageSize int, vmaid, incAligned int) defs.Err_t {
	rg.Lock_region()
	vma, ok := rg.vma(vmaid)
	if !ok {
		rg.Unlock_region()
		return defs.EINVALREGION
	}
	newEnd := vma.Sbrk + incAligned
	if newEnd > vma.VmEnd {
		rg.Unlock_region()
		return defs.ENOFREESPACE
	}
	for _, other := range rg.Vmas {
		if other == vma {
			continue
		}
		if overlaps(vma.VmStart, newEnd, other.VmStart, other.VmEnd) {
			rg.Unlock_region()
			return defs.ENOFREESPACE
		}
	}
	start := vma.Sbrk
	rg.Unlock_region()

	for va := start; va < start+incAligned; va += pageSize {
		if err := mapper.MapAnon(mm, pid, va/pageSize); err != 0 {
			return err
		}
	}

	rg.Lock_region()
	vma.Sbrk = newEnd
	rg.Unlock_region()
	return 0
}

/// Alloc implements alloc(pcb, vmaid, rgid, size) (spec §4.4): best-fit
/// against vma's free list, growing the heap via mapper on a miss and
/// retrying.
func Alloc(rg *Regions, mm *Mm, pid int, mapper FrameMapper, pageSize int, vmaid, rgid, size int) (int, defs.Err_t) {
	if size <= 0 {
		return 0, defs.EINVALREGION
	}
	if rgid < 0 || rgid >= MaxRegions {
		return 0, defs.EINVALREGION
	}

	rg.Lock_region()
	vma, ok := rg.vma(vmaid)
	if !ok {
		rg.Unlock_region()
		return 0, defs.EINVALREGION
	}

	for {
		if idx, start, ok := vma.bestFit(size); ok {
			if vma.freeList[idx].Size() == size {
				vma.freeList = append(vma.freeList[:idx], vma.freeList[idx+1:]...)
			} else {
				vma.freeList[idx].Start = start + size
			}
			rg.Symtab[rgid] = VmRegion{Start: start, End: start + size}
			rg.Unlock_region()
			return start, 0
		}

		incAligned := util.Roundup(size, pageSize)
		oldSbrk := vma.Sbrk
		rg.Unlock_region()

		if err := Extend(rg, mm, pid, mapper, pageSize, vmaid, incAligned); err != 0 {
			return 0, err
		}

		rg.Lock_region()
		vma.freeList = append(vma.freeList, VmRegion{Start: oldSbrk, End: vma.Sbrk})
	}
}

/// Free implements free(pcb, vmaid, rgid) (spec §4.4): a lazy free that
/// only returns the span to the free list, never releasing frames.
func Free(rg *Regions, vmaid, rgid int) defs.Err_t {
	if rgid < 0 || rgid >= MaxRegions {
		return defs.EINVALREGION
	}
	rg.Lock_region()
	defer rg.Unlock_region()

	if _, ok := rg.vma(vmaid); !ok {
		return defs.EINVALREGION
	}
	sym := rg.Symtab[rgid]
	if sym.Zero() {
		return defs.EINVALREGION
	}
	vma, _ := rg.vma(vmaid)
	vma.freeList = append([]VmRegion{sym}, vma.freeList...)
	rg.Symtab[rgid] = VmRegion{}
	return 0
}

/// ByteIO is implemented by the page-fault engine to resolve a virtual
/// address to a physical byte, via the TLB or the page table, performing
/// fault-in as needed (spec §4.4: "tlb_or_pte_translate(va) -> phys
/// followed by the MEMPHY syscall").
type ByteIO interface {
	ReadByte(mm *Mm, pid int, va int) (byte, defs.Err_t)
	WriteByte(mm *Mm, pid int, va int, b byte) defs.Err_t
}

func resolve(rg *Regions, rgid, offset int) (int, defs.Err_t) {
	if rgid < 0 || rgid >= MaxRegions {
		return 0, defs.EINVALREGION
	}
	rg.Lock_region()
	sym := rg.Symtab[rgid]
	rg.Unlock_region()
	if sym.Zero() {
		return 0, defs.EINVALREGION
	}
	va := sym.Start + offset
	if va < sym.Start || va >= sym.End {
		return 0, defs.EINVALREGION
	}
	return va, 0
}

/// Read implements read(pcb, rgid, offset) (spec §4.4).
func Read(rg *Regions, mm *Mm, pid int, io ByteIO, rgid, offset int) (byte, defs.Err_t) {
	va, err := resolve(rg, rgid, offset)
	if err != 0 {
		return 0, err
	}
	return io.ReadByte(mm, pid, va)
}

/// Write implements write(pcb, rgid, offset, byte) (spec §4.4).
func Write(rg *Regions, mm *Mm, pid int, io ByteIO, rgid, offset int, b byte) defs.Err_t {
	va, err := resolve(rg, rgid, offset)
	if err != 0 {
		return err
	}
	return io.WriteByte(mm, pid, va, b)
}
