package pgtbl

// IdxBits is the width of each of the five VPN index fields (spec §6:
// "typically 9 bits each, 512 entries per level").
const IdxBits = 9

// EntriesPerLevel is the fan-out of every intermediate node.
const EntriesPerLevel = 1 << IdxBits

const idxMask = EntriesPerLevel - 1

// ptNode is the leaf level: an array of packed PTEs.
type ptNode struct {
	entries [EntriesPerLevel]Pte
}

// pmdNode, pudNode, p4dNode, pgdNode are the four intermediate levels.
// Each is an array of 512 slots holding either nil or the address of the
// next-level node (spec §4.2), encoded here as a typed pointer per level
// rather than an untyped raw pointer (Design Notes: "encode each level as
// an explicitly-typed enum-of-fixed-size-array pointing to the next
// level").
type pmdNode struct {
	entries [EntriesPerLevel]*ptNode
}

type pudNode struct {
	entries [EntriesPerLevel]*pmdNode
}

type p4dNode struct {
	entries [EntriesPerLevel]*pudNode
}

type pgdNode struct {
	entries [EntriesPerLevel]*p4dNode
}

/// Table is the root of one process's five-level page table. It carries no
/// internal lock: every traversal that may allocate, and every write, must
/// be made while holding the owning Mm's lock (spec §4.2, §5).
type Table struct {
	root *pgdNode
}

/// New allocates an empty (all-nil) root node.
func New() *Table {
	return &Table{root: &pgdNode{}}
}

func indices(vpn uint64) (pgd, p4d, pud, pmd, pt int) {
	pgd = int((vpn >> (4 * IdxBits)) & idxMask)
	p4d = int((vpn >> (3 * IdxBits)) & idxMask)
	pud = int((vpn >> (2 * IdxBits)) & idxMask)
	pmd = int((vpn >> (1 * IdxBits)) & idxMask)
	pt = int((vpn >> (0 * IdxBits)) & idxMask)
	return
}

/// Lookup traverses PGD->P4D->PUD->PMD->PT (spec §4.2's pte_lookup). When
/// alloc is true, missing intermediate nodes are created zero-initialized
/// and linked; when false, any missing link returns (nil, false).
//
// The returned *Pte aliases the leaf slot; callers write through it to
// mutate the entry in place.
func (t *Table) Lookup(vpn uint64, alloc bool) (*Pte, bool) {
	pgdI, p4dI, pudI, pmdI, ptI := indices(vpn)

	p4dn := t.root.entries[pgdI]
	if p4dn == nil {
		if !alloc {
			return nil, false
		}
		p4dn = &p4dNode{}
		t.root.entries[pgdI] = p4dn
	}

	pudn := p4dn.entries[p4dI]
	if pudn == nil {
		if !alloc {
			return nil, false
		}
		pudn = &pudNode{}
		p4dn.entries[p4dI] = pudn
	}

	pmdn := pudn.entries[pudI]
	if pmdn == nil {
		if !alloc {
			return nil, false
		}
		pmdn = &pmdNode{}
		pudn.entries[pudI] = pmdn
	}

	ptn := pmdn.entries[pmdI]
	if ptn == nil {
		if !alloc {
			return nil, false
		}
		ptn = &ptNode{}
		pmdn.entries[pmdI] = ptn
	}

	return &ptn.entries[ptI], true
}

/// Peek is Lookup(vpn, false) phrased for read-only callers.
func (t *Table) Peek(vpn uint64) (Pte, bool) {
	pte, ok := t.Lookup(vpn, false)
	if !ok {
		return 0, false
	}
	return *pte, true
}

/// Free walks and releases all intermediate nodes, leaving the table empty
/// (spec §4.2: "Freeing the entire table walks and releases all
/// intermediate nodes"). Must be called while holding the owning Mm's lock.
func (t *Table) Free() {
	t.root = &pgdNode{}
}

/// Walk visits every present-or-swapped PTE in ascending vpn order, for
/// diagnostics (spec's supplemented dump features). Must be called while
/// holding the owning Mm's lock, same as every other traversal.
func (t *Table) Walk(fn func(vpn uint64, pte Pte)) {
	for pgdI, p4dn := range t.root.entries {
		if p4dn == nil {
			continue
		}
		for p4dI, pudn := range p4dn.entries {
			if pudn == nil {
				continue
			}
			for pudI, pmdn := range pudn.entries {
				if pmdn == nil {
					continue
				}
				for pmdI, ptn := range pmdn.entries {
					if ptn == nil {
						continue
					}
					for ptI, pte := range ptn.entries {
						if pte.Zero() {
							continue
						}
						vpn := uint64(pgdI)<<(4*IdxBits) |
							uint64(p4dI)<<(3*IdxBits) |
							uint64(pudI)<<(2*IdxBits) |
							uint64(pmdI)<<(1*IdxBits) |
							uint64(ptI)
						fn(vpn, pte)
					}
				}
			}
		}
	}
}

/// Invalidator is implemented by the TLB so that pgtbl's two legal PTE
/// writers can invalidate stale translations without importing the tlb
/// package (spec §4.5 coherence rule).
type Invalidator interface {
	InvalidateEntry(vpn uint64, pid int)
}

/// SetFpn is one of the two legal PTE writers (spec §4.2). It invalidates
/// any TLB entry for (vpn, pid) before installing the new mapping and
/// returns the updated entry.
func (t *Table) SetFpn(tlb Invalidator, pid int, vpn uint64, fpn int, dirty bool) Pte {
	tlb.InvalidateEntry(vpn, pid)
	pte, _ := t.Lookup(vpn, true)
	*pte = InitPte(true, fpn, dirty, false, 0, 0)
	return *pte
}

/// SetSwap is the other legal PTE writer (spec §4.2). It invalidates any
/// TLB entry for (vpn, pid) before marking the page swapped out.
func (t *Table) SetSwap(tlb Invalidator, pid int, vpn uint64, swptyp, swpoff int) Pte {
	tlb.InvalidateEntry(vpn, pid)
	pte, _ := t.Lookup(vpn, true)
	*pte = InitPte(true, 0, false, true, swptyp, swpoff)
	return *pte
}

/// SetReferencedBit sets or clears REFERENCED directly. No TLB
/// invalidation is performed: the coherence rule (spec §4.5) only
/// requires invalidation for changes to the translation or permission
/// bits, and REFERENCED is neither.
func (t *Table) SetReferencedBit(vpn uint64, v bool) {
	if pte, ok := t.Lookup(vpn, false); ok {
		*pte = pte.WithReferenced(v)
	}
}

/// ClearReferenced clears REFERENCED for vpn, used by the CLOCK sweep's
/// second-chance pass (spec §4.6.1).
func (t *Table) ClearReferenced(vpn uint64) {
	t.SetReferencedBit(vpn, false)
}

/// SetDirtyBit sets or clears DIRTY directly, same rationale as
/// SetReferencedBit.
func (t *Table) SetDirtyBit(vpn uint64, v bool) {
	if pte, ok := t.Lookup(vpn, false); ok {
		*pte = pte.WithDirty(v)
	}
}

/// Clear zeroes the PTE for vpn after invalidating its TLB entry. Used
/// when a clean victim is dropped rather than swapped out (spec §4.6).
func (t *Table) Clear(tlb Invalidator, pid int, vpn uint64) {
	tlb.InvalidateEntry(vpn, pid)
	pte, ok := t.Lookup(vpn, false)
	if ok {
		*pte = 0
	}
}
