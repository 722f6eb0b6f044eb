// Package pgtbl implements the five-level hierarchical page table (spec
// §4.2): a lazily-allocated PGD -> P4D -> PUD -> PMD -> PT chain whose leaf
// level holds packed page-table entries.
//
// The bit-packed Pte newtype follows the teacher's Pa_t/PTE_* convention in
// mem/mem.go (a raw integer type with named bit constants and total
// accessor functions) and the Design Notes' instruction to never expose raw
// integers outside this component.
package pgtbl

// Pte is a packed 32-bit page-table entry. Bit layout (spec §6):
//
//	31       PRESENT
//	30       SWAPPED
//	29       DIRTY
//	28       REFERENCED
//	27..12   FPN   (16 bits -> up to 65536 RAM frames)
//	11..9    SWPTYP (3 bits -> up to 8 swap devices; spec caps at 4)
//	8..0     SWPOFF (9 bits -> up to 512 frames per swap device)
//
// A zeroed Pte means "never mapped".
type Pte uint32

const (
	bitPresent    = 31
	bitSwapped    = 30
	bitDirty      = 29
	bitReferenced = 28

	fpnShift  = 12
	fpnBits   = 16
	fpnMask   = Pte(1<<fpnBits-1) << fpnShift
	swtShift  = 9
	swtBits   = 3
	swtMask   = Pte(1<<swtBits-1) << swtShift
	swoShift  = 0
	swoBits   = 9
	swoMask   = Pte(1<<swoBits - 1)
)

func flag(bit uint) Pte { return 1 << bit }

/// InitPte composes a packed PTE from its fields (spec §4.2). Exactly one
/// of the (fpn) / (swptyp, swpoff) pairs is meaningful, per whether swapped
/// is set.
func InitPte(present bool, fpn int, dirty bool, swapped bool, swptyp int, swpoff int) Pte {
	var p Pte
	if present {
		p |= flag(bitPresent)
	}
	if swapped {
		p |= flag(bitSwapped)
	}
	if dirty {
		p |= flag(bitDirty)
	}
	if swapped {
		p |= (Pte(swptyp) << swtShift) & swtMask
		p |= (Pte(swpoff) << swoShift) & swoMask
	} else {
		p |= (Pte(fpn) << fpnShift) & fpnMask
	}
	return p
}

/// PAGING_FPN (kept as the spec's accessor name) returns the frame field.
func PAGING_FPN(p Pte) int {
	return int((p & fpnMask) >> fpnShift)
}

/// PAGING_SWP returns the (swptyp, swpoff) pair encoded in a swapped PTE.
func PAGING_SWP(p Pte) (swptyp int, swpoff int) {
	swptyp = int((p & swtMask) >> swtShift)
	swpoff = int((p & swoMask) >> swoShift)
	return
}

/// PAGING_PTE_GET_DIRTY reports the DIRTY bit.
func PAGING_PTE_GET_DIRTY(p Pte) bool { return p&flag(bitDirty) != 0 }

/// PAGING_PTE_GET_REFERENCED reports the REFERENCED bit.
func PAGING_PTE_GET_REFERENCED(p Pte) bool { return p&flag(bitReferenced) != 0 }

/// PAGING_PTE_GET_SWPTYP returns only the swap-device-index field.
func PAGING_PTE_GET_SWPTYP(p Pte) int {
	swptyp, _ := PAGING_SWP(p)
	return swptyp
}

/// Present reports the PRESENT bit.
func (p Pte) Present() bool { return p&flag(bitPresent) != 0 }

/// Swapped reports the SWAPPED bit.
func (p Pte) Swapped() bool { return p&flag(bitSwapped) != 0 }

/// Dirty reports the DIRTY bit. Only meaningful when Present && !Swapped.
func (p Pte) Dirty() bool { return PAGING_PTE_GET_DIRTY(p) }

/// Referenced reports the REFERENCED bit.
func (p Pte) Referenced() bool { return PAGING_PTE_GET_REFERENCED(p) }

/// Fpn returns the frame-number field.
func (p Pte) Fpn() int { return PAGING_FPN(p) }

/// Zero reports whether this PTE has never been mapped.
func (p Pte) Zero() bool { return p == 0 }

/// WithReferenced returns a copy of p with REFERENCED set to v.
func (p Pte) WithReferenced(v bool) Pte {
	if v {
		return p | flag(bitReferenced)
	}
	return p &^ flag(bitReferenced)
}

/// WithDirty returns a copy of p with DIRTY set to v.
func (p Pte) WithDirty(v bool) Pte {
	if v {
		return p | flag(bitDirty)
	}
	return p &^ flag(bitDirty)
}
