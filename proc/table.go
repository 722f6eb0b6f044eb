package proc

import (
	"sync"

	"github.com/thanhtoan23/OS-Assignment/vm"
)

/// Table is the kernel's process table, indexed by pid. It is the arena
/// the Design Notes call for: the page-tracking list and the replacement
/// engine hold PIDs, not pointers, and resolve them through this table
/// under the Mm lock, which breaks the Pcb<->Mm<->replacement-list cycle.
type Table struct {
	mu    sync.RWMutex
	byPid map[int]*Pcb
}

/// NewTable allocates an empty process table.
func NewTable() *Table {
	return &Table{byPid: make(map[int]*Pcb)}
}

/// Add admits p into the table.
func (t *Table) Add(p *Pcb) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byPid[p.ID] = p
}

/// Remove evicts pid from the table, e.g. once a process finalizes
/// (spec §4.8). The caller is responsible for clearing the owner
/// back-reference from the page-tracking list before calling this, per
/// the Data Model's ownership note.
func (t *Table) Remove(pid int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.byPid, pid)
}

/// Get looks up pid.
func (t *Table) Get(pid int) (*Pcb, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.byPid[pid]
	return p, ok
}

/// MmFor implements pagefault.ProcTable without this package needing to
/// import pagefault: Go interfaces are satisfied structurally.
func (t *Table) MmFor(pid int) (*vm.Mm, bool) {
	p, ok := t.Get(pid)
	if !ok {
		return nil, false
	}
	return p.Mm, true
}

/// Len reports the number of live processes.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byPid)
}
