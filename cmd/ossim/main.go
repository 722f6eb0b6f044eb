// Command ossim runs the virtual-memory/scheduling simulator core
// against a configuration file (spec §6): it loads processes at their
// configured start times, runs them to completion across a pool of CPU
// workers, and exits 0 once every configured process has finished.
//
// The instruction set, the program loader, and the timer are the core's
// named out-of-scope collaborators (spec §1); this command supplies the
// minimal stand-ins needed to actually run something end to end, wired
// through the same interfaces a real interpreter/loader/timer would
// implement.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thanhtoan23/OS-Assignment/config"
	"github.com/thanhtoan23/OS-Assignment/diag"
	"github.com/thanhtoan23/OS-Assignment/kernel"
	"github.com/thanhtoan23/OS-Assignment/proc"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to the simulation config file")
		pageSize   = flag.Int("pagesize", 256, "bytes per page/frame")
		heapSize   = flag.Int("heapsize", 1 << 20, "per-process virtual heap size in bytes")
		tlbBuckets = flag.Int("tlb-buckets", 64, "TLB hash table bucket count")
		tlbWays    = flag.Int("tlb-ways", 16, "TLB entries held per colliding chain before eviction")
		fifo       = flag.Bool("fifo", false, "use strict-FIFO replacement instead of CLOCK")
		watch      = flag.Bool("watch", false, "repaint a live dashboard while the simulation runs")
		cpuprofile = flag.String("cpuprofile", "", "write a runtime/pprof CPU profile here")
		memprofile = flag.String("memprofile", "", "write a runtime/pprof heap profile here")
		fragOut    = flag.String("fragprofile", "", "write a google/pprof RAM-fragmentation profile here")
		tickPeriod = flag.Duration("tick", time.Millisecond, "wall-clock duration of one simulated tick")
	)
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "ossim: -config is required")
		os.Exit(1)
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ossim: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	cfgFile, err := os.Open(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ossim: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Parse(cfgFile)
	cfgFile.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ossim: config error: %v\n", err)
		os.Exit(1)
	}

	k := kernel.New(cfg, *pageSize, *heapSize, *tlbBuckets, *tlbWays)
	if *fifo {
		k.Engine.UseFIFO()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clk := newWallClock(*tickPeriod)
	go clk.Run(ctx)

	bar := diag.NewLoaderProgress(cfg.NumProcesses)
	loader := &progressLoader{bar: bar}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		k.LoaderLoop(ctx, clk, loader)
	}()

	numWorkers := cfg.NumCPUs
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			k.WorkerLoop(ctx, clk, basicInterpreter{})
		}()
	}

	if *watch {
		dash := diag.NewDashboard(os.Stdout)
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-time.After(200 * time.Millisecond):
					dash.Render(clk.CurrentTime(), k.Ram, k.Tlb, k.Procs)
				}
			}
		}()
	}

	waitUntilDrained(ctx, cancel, cfg.NumProcesses, k.Procs)
	wg.Wait()

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err == nil {
			pprof.WriteHeapProfile(f)
			f.Close()
		}
	}
	if *fragOut != "" {
		writeFragProfile(*fragOut, k)
	}

	k.Recorder.DumpRecent(os.Stdout, 20)
}

// waitUntilDrained blocks until every admitted process has finished and
// no more are pending admission, then cancels ctx so the worker/loader
// goroutines exit.
func waitUntilDrained(ctx context.Context, cancel context.CancelFunc, total int, procs *proc.Table) {
	if total == 0 {
		cancel()
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Millisecond):
		}
		if procs.Len() > 0 {
			drainedOnce.Store(true)
		}
		if procs.Len() == 0 && drainedOnce.Load() {
			cancel()
			return
		}
	}
}

// drainedOnce flips true the first time the process table is observed
// non-empty, so an empty table before any process has been admitted
// doesn't look like completion.
var drainedOnce atomicBool

type atomicBool struct{ v int32 }

func (b *atomicBool) Load() bool { return atomic.LoadInt32(&b.v) != 0 }
func (b *atomicBool) Store(v bool) {
	n := int32(0)
	if v {
		n = 1
	}
	atomic.StoreInt32(&b.v, n)
}

// basicInterpreter is the minimal stand-in for the out-of-scope
// instruction interpreter: it advances the program counter by one and
// reports completion once it reaches code size. A real interpreter
// would additionally decode and execute opcodes (possibly issuing
// Kernel.Dispatch syscalls); this core never assumes more about it than
// the Interpreter interface requires.
type basicInterpreter struct{}

func (basicInterpreter) Step(pcb *proc.Pcb) (bool, error) {
	pcb.PC++
	return pcb.PC >= pcb.CodeSize, nil
}

// progressLoader is the minimal stand-in for the out-of-scope
// instruction loader: a program's code size is its non-empty line
// count, decorating each admission with a progress bar tick.
type progressLoader struct {
	bar interface{ Add(int) error }
}

func (l *progressLoader) Load(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	n := 0
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	l.bar.Add(1)
	return n, nil
}

// wallClock paces simulated ticks off the wall clock at a configurable
// period, the user-space stand-in for the out-of-scope timer/event
// driver (spec §4.7's "timer thread").
type wallClock struct {
	tick   int64
	period time.Duration
}

func newWallClock(period time.Duration) *wallClock {
	return &wallClock{period: period}
}

func (c *wallClock) Run(ctx context.Context) {
	t := time.NewTicker(c.period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			atomic.AddInt64(&c.tick, 1)
		}
	}
}

func (c *wallClock) CurrentTime() int64 { return atomic.LoadInt64(&c.tick) }

func (c *wallClock) WaitTick(ctx context.Context) int64 {
	start := c.CurrentTime()
	for c.CurrentTime() == start {
		select {
		case <-ctx.Done():
			return c.CurrentTime()
		case <-time.After(time.Millisecond):
		}
	}
	return c.CurrentTime()
}

func writeFragProfile(path string, k *kernel.Kernel) {
	p := diag.FragmentationProfile("ram", k.Ram)
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ossim: %v\n", err)
		return
	}
	defer f.Close()
	if err := p.Write(f); err != nil {
		fmt.Fprintf(os.Stderr, "ossim: %v\n", err)
	}
}
