package vm

import "github.com/thanhtoan23/OS-Assignment/defs"

/// RegionBuf streams bytes into or out of one allocated region, byte by
/// byte through Read/Write, tracking an offset/length pair the way the
/// teacher's Userbuf_t tracks userva/off/len across possibly-faulting
/// page accesses (biscuit/src/vm/userbuf.go). Here every byte may
/// provoke a page fault rather than a raw dmap, since this simulator has
/// no direct-mapped kernel view of user pages.
type RegionBuf struct {
	rg    *Regions
	mm    *Mm
	pid   int
	io    ByteIO
	rgid  int
	off   int
	lenb  int
}

/// NewRegionBuf prepares a buffer over rgid's region, starting at byte
/// offset 0.
func NewRegionBuf(rg *Regions, mm *Mm, pid int, io ByteIO, rgid, length int) *RegionBuf {
	return &RegionBuf{rg: rg, mm: mm, pid: pid, io: io, rgid: rgid, lenb: length}
}

/// Remain returns the number of bytes left to transfer.
func (b *RegionBuf) Remain() int { return b.lenb - b.off }

/// Totalsz returns the buffer's total length.
func (b *RegionBuf) Totalsz() int { return b.lenb }

/// Uioread copies up to len(dst) bytes out of the region into dst,
/// stopping early on the first faulting access.
func (b *RegionBuf) Uioread(dst []uint8) (int, defs.Err_t) {
	n := 0
	for n < len(dst) && b.off < b.lenb {
		v, err := Read(b.rg, b.mm, b.pid, b.io, b.rgid, b.off)
		if err != 0 {
			return n, err
		}
		dst[n] = v
		n++
		b.off++
	}
	return n, 0
}

/// Uiowrite copies up to len(src) bytes from src into the region,
/// stopping early on the first faulting access.
func (b *RegionBuf) Uiowrite(src []uint8) (int, defs.Err_t) {
	n := 0
	for n < len(src) && b.off < b.lenb {
		if err := Write(b.rg, b.mm, b.pid, b.io, b.rgid, b.off, src[n]); err != 0 {
			return n, err
		}
		n++
		b.off++
	}
	return n, 0
}
