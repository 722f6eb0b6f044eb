// Package proc implements the process control block (spec §3's Pcb) and
// the kernel-held process table the replacement engine and scheduler
// consult by pid (Design Notes: "the page-tracking list stores PIDs...
// the replacement engine dereferences PIDs through a kernel-held process
// table under the Mm lock").
package proc

import (
	"github.com/thanhtoan23/OS-Assignment/accnt"
	"github.com/thanhtoan23/OS-Assignment/vm"
)

/// NumRegs is the general-register file size (spec §3: "ten general
/// registers").
const NumRegs = 10

/// Pcb is one simulated process: its register file, its exclusively
/// owned address space (Mm plus Regions), and its accounting.
type Pcb struct {
	ID   int
	Prio int
	PC   int
	Regs [NumRegs]int64

	CodeSize  int   // pc == CodeSize marks completion (spec §4.8)
	StartTime int64 // admission gate for the loader (spec §4.7)

	Mm      *vm.Mm
	Regions *vm.Regions

	Acc accnt.Accnt_t
}

/// New allocates a Pcb with a fresh empty address space spanning
/// [heapStart, heapEnd) as vma 0.
func New(pid, prio int, startTime int64, codeSize, heapStart, heapEnd int) *Pcb {
	return &Pcb{
		ID:        pid,
		Prio:      prio,
		StartTime: startTime,
		CodeSize:  codeSize,
		Mm:        vm.NewMm(),
		Regions:   vm.NewRegions(heapStart, heapEnd),
	}
}

/// Pid implements sched.Runnable.
func (p *Pcb) Pid() int { return p.ID }

/// Priority implements sched.Runnable.
func (p *Pcb) Priority() int { return p.Prio }

/// Done reports whether the process has executed past the end of its
/// program (spec §4.8: "if it holds a process whose pc == code.size,
/// finalize and free it").
func (p *Pcb) Done() bool { return p.PC >= p.CodeSize }
