// Package mem implements the physical memory device (MEMPHY, spec §4.1):
// a byte-addressable store backing RAM and each swap device, divided into
// fixed-size frames with a free-frame pool.
//
// The struct shape and locking discipline are adapted from the teacher's
// Physmem_t (biscuit/src/mem/mem.go): a free list guarded by a single
// mutex, frames identified by a small integer, and "put" only ever pushing
// at the head so a frame is never handed out twice before it is returned.
// Biscuit's version manages real x86-64 physical pages with reference
// counts and a direct map; MEMPHY has no address space of its own to map
// into and no sharing, so refcounting and Dmap are dropped in favor of a
// single owning PTE per frame (spec invariant I1).
package mem

import (
	"fmt"
	"sync"
)

/// Fpn_t is a physical frame number local to one MEMPHY device.
type Fpn_t int

/// NoFrame is the -1 sentinel meaning "no frame"; frame 0 is a valid frame.
const NoFrame Fpn_t = -1

/// Device is one physical memory device: either the single RAM or one of
/// up to four swap devices (spec §6 config: up to four swap sizes).
type Device struct {
	sync.Mutex // the MEMPHY lock (lowest in the acquisition order, spec §5)

	storage  []byte
	pageSize int

	// freeList holds frame numbers not currently mapped by any PTE, in
	// LIFO order: get_free_frame pops the head, put_free_frame pushes
	// the head, so a frame is never returned twice before being put
	// back (spec §4.1 guarantee).
	freeList []Fpn_t

	// sequential marks a device that must move a cursor before each
	// access instead of addressing storage directly (spec §4.1: "some
	// devices may be simulated by moving a cursor first"). Swap devices
	// in this simulator are modeled as sequential-access, matching
	// mm-memphy.c's MEMPHY_seq_read/MEMPHY_seq_write.
	sequential bool
	cursor     int
}

/// NewDevice allocates a MEMPHY device of maxSize bytes. Format must be
/// called before the device is usable.
func NewDevice(maxSize int, sequential bool) *Device {
	return &Device{
		storage:    make([]byte, maxSize),
		sequential: sequential,
	}
}

/// Format partitions storage into maxSize/pageSize frames and pushes them
/// onto the free list in ascending order (spec §4.1).
func (d *Device) Format(pageSize int) error {
	if pageSize <= 0 || len(d.storage)%pageSize != 0 {
		return fmt.Errorf("mem: page size %d does not evenly divide device of %d bytes", pageSize, len(d.storage))
	}
	d.Lock()
	defer d.Unlock()
	d.pageSize = pageSize
	n := len(d.storage) / pageSize
	d.freeList = make([]Fpn_t, n)
	for i := 0; i < n; i++ {
		d.freeList[i] = Fpn_t(i)
	}
	return nil
}

/// PageSize returns the configured frame size.
func (d *Device) PageSize() int {
	return d.pageSize
}

/// NumFrames returns the total number of frames the device was formatted
/// with.
func (d *Device) NumFrames() int {
	return len(d.storage) / d.pageSize
}

/// GetFreeFrame pops the head of the free list. The returned frame is not
/// returned again until it is PutFreeFrame'd (spec §4.1 guarantee).
func (d *Device) GetFreeFrame() (Fpn_t, bool) {
	d.Lock()
	defer d.Unlock()
	if len(d.freeList) == 0 {
		return NoFrame, false
	}
	fpn := d.freeList[0]
	d.freeList = d.freeList[1:]
	return fpn, true
}

/// PutFreeFrame pushes fpn at the head of the free list.
func (d *Device) PutFreeFrame(fpn Fpn_t) {
	d.Lock()
	defer d.Unlock()
	d.freeList = append([]Fpn_t{fpn}, d.freeList...)
}

/// FreeCount reports the number of currently free frames.
func (d *Device) FreeCount() int {
	d.Lock()
	defer d.Unlock()
	return len(d.freeList)
}

/// FreeFrames returns a snapshot copy of the free-frame list, for
/// fragmentation diagnostics. The order reflects LIFO get/put history,
/// not frame-number order.
func (d *Device) FreeFrames() []Fpn_t {
	d.Lock()
	defer d.Unlock()
	out := make([]Fpn_t, len(d.freeList))
	copy(out, d.freeList)
	return out
}

func (d *Device) moveCursor(addr int) {
	// Sequential devices must be traversed step by step to reach addr,
	// mirroring MEMPHY_mv_csr's single-step walk.
	d.cursor = 0
	for d.cursor < addr && d.cursor < len(d.storage)-1 {
		d.cursor = (d.cursor + 1) % len(d.storage)
	}
}

/// Read returns the byte at phys_addr. Out-of-range addresses fail.
func (d *Device) Read(physAddr int) (byte, error) {
	d.Lock()
	defer d.Unlock()
	if physAddr < 0 || physAddr >= len(d.storage) {
		return 0, fmt.Errorf("mem: read out of range: %d", physAddr)
	}
	if d.sequential {
		d.moveCursor(physAddr)
		return d.storage[d.cursor], nil
	}
	return d.storage[physAddr], nil
}

/// Write stores b at phys_addr. Out-of-range addresses fail.
func (d *Device) Write(physAddr int, b byte) error {
	d.Lock()
	defer d.Unlock()
	if physAddr < 0 || physAddr >= len(d.storage) {
		return fmt.Errorf("mem: write out of range: %d", physAddr)
	}
	if d.sequential {
		d.moveCursor(physAddr)
		d.storage[d.cursor] = b
		return nil
	}
	d.storage[physAddr] = b
	return nil
}

/// FrameAddr returns the physical address of the first byte of frame fpn.
func (d *Device) FrameAddr(fpn Fpn_t) int {
	return int(fpn) * d.pageSize
}

/// DumpNonZero returns the address/byte pairs of every non-zero byte in
/// storage, in ascending address order (adapted from mm-memphy.c's
/// MEMPHY_dump, which prints only non-zero bytes).
func (d *Device) DumpNonZero() []DumpByte {
	d.Lock()
	defer d.Unlock()
	var out []DumpByte
	for i, b := range d.storage {
		if b != 0 {
			out = append(out, DumpByte{Addr: i, Value: b})
		}
	}
	return out
}

/// DumpByte is one non-zero byte reported by DumpNonZero.
type DumpByte struct {
	Addr  int
	Value byte
}
