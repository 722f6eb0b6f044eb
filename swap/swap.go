// Package swap implements the page-copy primitive that moves one frame's
// worth of bytes between two MEMPHY devices (spec §4.1's swap_copy, and
// the SYSMEM_SWP_OP syscall of spec §6).
//
// Grounded on mm-memphy.c's byte-at-a-time MEMPHY_seq_read/MEMPHY_seq_write
// loop: swap devices in this simulator are sequential-access (mem.Device
// with sequential=true), so a page move is a plain byte loop rather than a
// bulk memcpy.
package swap

import "github.com/thanhtoan23/OS-Assignment/mem"

/// Copy moves one page's worth of bytes from src[srcFpn] to dst[dstFpn].
/// Both devices must share the same page size; src and dst may be the same
/// device.
func Copy(src *mem.Device, srcFpn mem.Fpn_t, dst *mem.Device, dstFpn mem.Fpn_t) error {
	n := src.PageSize()
	srcBase := src.FrameAddr(srcFpn)
	dstBase := dst.FrameAddr(dstFpn)
	for i := 0; i < n; i++ {
		b, err := src.Read(srcBase + i)
		if err != nil {
			return err
		}
		if err := dst.Write(dstBase+i, b); err != nil {
			return err
		}
	}
	return nil
}

/// Direction selects which way SYSMEM_SWP_OP moves a page (spec §6: a4 = 0
/// means RAM -> swap, a4 = 1 means swap -> RAM).
type Direction int

const (
	Out Direction = 0 // RAM -> swap
	In  Direction = 1 // swap -> RAM
)

/// Op performs one SYSMEM_SWP_OP: ram and swapDev play the role of src/dst
/// (or dst/src) depending on dir, and ramFpn/swapFpn are the two frame
/// numbers the caller already agreed on with the page table.
func Op(ram *mem.Device, ramFpn mem.Fpn_t, swapDev *mem.Device, swapFpn mem.Fpn_t, dir Direction) error {
	if dir == Out {
		return Copy(ram, ramFpn, swapDev, swapFpn)
	}
	return Copy(swapDev, swapFpn, ram, ramFpn)
}
