// Package kernel wires the five core components — page table, page-fault
// engine, TLB, region allocator, and MLQ scheduler — into the simulator's
// process lifecycle (spec §4.7, §4.8): a loader thread that admits
// configured processes at their start_time, and a pool of CPU worker
// threads that dequeue a process, run it for one time slice, and requeue
// or finalize it.
//
// The instruction loader, the instruction interpreter, and the timer
// driver are explicitly out of scope (Non-goals): Kernel depends on them
// through the ProgramLoader, Interpreter, and Clock interfaces below,
// the same dependency-inversion shape as pgtbl.Invalidator and
// vm.FrameMapper, so this package never imports anything that would
// pull in a concrete instruction set.
package kernel

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/thanhtoan23/OS-Assignment/config"
	"github.com/thanhtoan23/OS-Assignment/defs"
	"github.com/thanhtoan23/OS-Assignment/diag"
	"github.com/thanhtoan23/OS-Assignment/mem"
	"github.com/thanhtoan23/OS-Assignment/pagefault"
	"github.com/thanhtoan23/OS-Assignment/proc"
	"github.com/thanhtoan23/OS-Assignment/sched"
	"github.com/thanhtoan23/OS-Assignment/swap"
	"github.com/thanhtoan23/OS-Assignment/tlb"
	"github.com/thanhtoan23/OS-Assignment/vm"
)

/// ProgramLoader is the out-of-scope instruction loader: given a program
/// path it reports the program's code size (spec's pc == code.size
/// completion test). The core never inspects program contents itself.
type ProgramLoader interface {
	Load(path string) (codeSize int, err error)
}

/// Interpreter is the out-of-scope instruction interpreter ("run"): it
/// advances pcb by exactly one instruction, mutating its PC and
/// registers, and reports whether that instruction was the process's
/// last.
type Interpreter interface {
	Step(pcb *proc.Pcb) (done bool, err error)
}

/// Clock is the out-of-scope timer/event driver: the core only ever asks
/// it for the current simulation time and waits on it between
/// instructions (spec §4.7: "block on the timer between instructions").
type Clock interface {
	CurrentTime() int64
	WaitTick(ctx context.Context) int64
}

/// Kernel is the assembled simulator core: the shared RAM/swap devices,
/// TLB, page-fault/replacement engine, scheduler, and process table,
/// plus the admission queue the loader thread drains.
type Kernel struct {
	Ram      *mem.Device
	Swaps    []*mem.Device
	PageSize int
	TimeSlot int
	HeapSize int

	Tlb      *tlb.TLB
	Engine   *pagefault.Engine
	Sched    *sched.MLQ
	Procs    *proc.Table
	Recorder *diag.Recorder

	mu      sync.Mutex
	pending []config.ProcessSpec
	nextPid int
}

/// New assembles a Kernel from a parsed Config. pageSize is the frame
/// size every device is formatted with; heapSize bounds each process's
/// vma 0 (spec §3's "symbol table of up to N regions" lives within it).
func New(cfg *config.Config, pageSize, heapSize, tlbBuckets, tlbWays int) *Kernel {
	ram := mem.NewDevice(cfg.RamSize, false)
	if err := ram.Format(pageSize); err != nil {
		panic(err) // a misconfigured RAM size is a config-time bug, not a runtime fault
	}

	swaps := make([]*mem.Device, 4)
	for i, sz := range cfg.SwapSizes {
		if sz <= 0 {
			continue
		}
		d := mem.NewDevice(sz, true)
		if err := d.Format(pageSize); err != nil {
			panic(err)
		}
		swaps[i] = d
	}

	t := tlb.New(tlbBuckets, tlbWays)
	procs := proc.NewTable()
	engine := pagefault.NewEngine(ram, swaps, pageSize, t, procs)
	recorder := diag.NewRecorder(1024)
	engine.Sink = recorder

	pending := append([]config.ProcessSpec(nil), cfg.Processes...)
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].StartTime < pending[j].StartTime
	})

	return &Kernel{
		Ram:      ram,
		Swaps:    swaps,
		PageSize: pageSize,
		TimeSlot: cfg.TimeSlot,
		HeapSize: heapSize,
		Tlb:      t,
		Engine:   engine,
		Sched:    sched.New(),
		Procs:    procs,
		Recorder: recorder,
		pending:  pending,
	}
}

func (k *Kernel) allocPid() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	pid := k.nextPid
	k.nextPid++
	return pid
}

/// LoaderLoop implements the loader thread (spec §4.7: "for each sorted
/// entry, wait until current_time() >= start_time, load the program,
/// allocate an Mm, bind it and the shared RAM/swap array into the
/// process, and add it to the scheduler"). Processes were already
/// sorted by start_time ascending in New.
func (k *Kernel) LoaderLoop(ctx context.Context, clk Clock, loader ProgramLoader) {
	for _, spec := range k.pending {
		for clk.CurrentTime() < spec.StartTime {
			select {
			case <-ctx.Done():
				return
			default:
			}
			clk.WaitTick(ctx)
		}

		codeSize, err := loader.Load(spec.Path)
		if err != nil {
			continue // malformed program: never admitted, not a kernel fault
		}

		pid := k.allocPid()
		pcb := proc.New(pid, spec.Priority, spec.StartTime, codeSize, 0, k.HeapSize)
		k.Procs.Add(pcb)
		k.Sched.Add(pcb)
	}
}

/// WorkerLoop implements one CPU worker thread (spec §4.7): dequeue a
/// process, run it for up to TimeSlot instructions (finalizing early if
/// it completes), then requeue or finalize.
func (k *Kernel) WorkerLoop(ctx context.Context, clk Clock, interp Interpreter) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		r, ok := k.Sched.Dequeue(clk.CurrentTime())
		if !ok {
			time.Sleep(time.Millisecond) // bounded sleep-poll, spec §5 suspension point
			continue
		}

		pcb, ok := k.Procs.Get(r.Pid())
		if !ok {
			k.Sched.Finish(r)
			continue
		}

		for slice := 0; slice < k.TimeSlot && !pcb.Done(); slice++ {
			clk.WaitTick(ctx)
			k.Engine.SetTick(clk.CurrentTime())
			done, _ := interp.Step(pcb)
			pcb.Acc.AddInstr(1)
			pcb.Acc.AddTicks(1)
			if done {
				break
			}
		}

		if pcb.Done() {
			k.Sched.Finish(r)
			k.Engine.FreeProcess(pcb.ID, pcb.Mm)
			k.Procs.Remove(pcb.ID)
		} else {
			k.Sched.Requeue(r, clk.CurrentTime())
		}
	}
}

/// Dispatch implements the four in-scope syscalls the interpreter
/// drives through sc_regs (spec §6): SYSMEM_INC_OP, SYSMEM_SWP_OP,
/// SYSMEM_IO_READ, SYSMEM_IO_WRITE. The result register is only
/// meaningful for a read.
func (k *Kernel) Dispatch(pid int, regs defs.Regs) (result int64, err defs.Err_t) {
	pcb, ok := k.Procs.Get(pid)
	if !ok {
		return 0, defs.EFAULT
	}

	switch regs.A1 {
	case defs.SysmemIncOp:
		vmaid := int(regs.A2)
		inc := int(regs.A3)
		return 0, vm.Extend(pcb.Regions, pcb.Mm, pid, k.Engine, k.PageSize, vmaid, inc)

	case defs.SysmemSwpOp:
		return 0, k.swapOp(regs)

	case defs.SysmemIoRead:
		b, ioerr := k.Ram.Read(int(regs.A2))
		if ioerr != nil {
			return 0, defs.EFAULT
		}
		return int64(b), 0

	case defs.SysmemIoWrite:
		if ioerr := k.Ram.Write(int(regs.A2), byte(regs.A3)); ioerr != nil {
			return 0, defs.EFAULT
		}
		return 0, 0

	default:
		return 0, defs.EFAULT
	}
}

func (k *Kernel) swapOp(regs defs.Regs) defs.Err_t {
	idx := int(regs.A5)
	if idx < 0 || idx >= len(k.Swaps) || k.Swaps[idx] == nil {
		return defs.ECONFIG
	}
	dir := swap.Direction(regs.A4)

	var cerr error
	if dir == swap.Out {
		cerr = swap.Op(k.Ram, mem.Fpn_t(regs.A2), k.Swaps[idx], mem.Fpn_t(regs.A3), swap.Out)
	} else {
		cerr = swap.Op(k.Ram, mem.Fpn_t(regs.A3), k.Swaps[idx], mem.Fpn_t(regs.A2), swap.In)
	}
	if cerr != nil {
		return defs.EFAULT
	}
	return 0
}

/// Alloc wires liballoc's alloc() onto the region allocator (spec §4.4).
func (k *Kernel) Alloc(pid, vmaid, rgid, size int) (int, defs.Err_t) {
	pcb, ok := k.Procs.Get(pid)
	if !ok {
		return 0, defs.EFAULT
	}
	return vm.Alloc(pcb.Regions, pcb.Mm, pid, k.Engine, k.PageSize, vmaid, rgid, size)
}

/// Free wires libfree's free() onto the region allocator.
func (k *Kernel) Free(pid, vmaid, rgid int) defs.Err_t {
	pcb, ok := k.Procs.Get(pid)
	if !ok {
		return defs.EFAULT
	}
	return vm.Free(pcb.Regions, vmaid, rgid)
}

/// ReadByte wires a program's read() onto the region allocator and the
/// page-fault engine's translate path.
func (k *Kernel) ReadByte(pid, rgid, offset int) (byte, defs.Err_t) {
	pcb, ok := k.Procs.Get(pid)
	if !ok {
		return 0, defs.EFAULT
	}
	return vm.Read(pcb.Regions, pcb.Mm, pid, k.Engine, rgid, offset)
}

/// WriteByte wires a program's write() onto the region allocator and the
/// page-fault engine's translate path.
func (k *Kernel) WriteByte(pid, rgid, offset int, b byte) defs.Err_t {
	pcb, ok := k.Procs.Get(pid)
	if !ok {
		return defs.EFAULT
	}
	return vm.Write(pcb.Regions, pcb.Mm, pid, k.Engine, rgid, offset, b)
}
