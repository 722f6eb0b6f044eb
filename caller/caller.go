// Package caller detects and reports TLB/page-table coherence
// violations exactly once per distinct call chain, so a bug that fires
// on every translation does not flood the log.
//
// Adapted from the teacher's caller.go (biscuit/src/caller/caller.go),
// whose Distinct_caller_t hashes the current goroutine's call stack to
// recognize a previously-seen caller path. The hashing and whitelist
// mechanism is kept verbatim (it is pure runtime/reflection, nothing
// hardware-specific); only the call sites' meaning changes, from
// "which syscall path raced" to "which code path broke the coherence
// invariant that every PTE write changing translation bits must
// invalidate the TLB first" (spec §4.5).
package caller

import (
	"fmt"
	"runtime"
	"sync"
)

// Callerdump prints the call stack starting at the given depth.
func Callerdump(start int) {
	i := start
	s := ""
	for {
		_, f, l, ok := runtime.Caller(i)
		if !ok {
			break
		}
		i++
		if s == "" {
			s = fmt.Sprintf("%s:%d\n", f, l)
		} else {
			s += fmt.Sprintf("\t<-%s:%d\n", f, l)
		}
	}
	fmt.Printf("%s", s)
}

/// Coherence tracks whether a given call chain has already reported a
/// TLB/page-table incoherence, so repeated faults from the same site
/// only report once.
type Coherence struct {
	sync.Mutex
	Enabled bool
	did     map[uintptr]bool
	Whitel  map[string]bool
}

func (dc *Coherence) pchash(pcs []uintptr) uintptr {
	if len(pcs) == 0 {
		panic("d'oh")
	}
	var ret uintptr
	for _, pc := range pcs {
		pc = pc*1103515245 + 12345
		ret ^= pc
	}
	return ret
}

// Len returns the number of unique violation sites recorded.
func (dc *Coherence) Len() int {
	dc.Lock()
	ret := len(dc.did)
	dc.Unlock()
	return ret
}

/// Report records a TLB/page-table incoherence at the caller's call
/// chain. It returns true along with a formatted stack trace only the
/// first time that chain is seen; callers should log (never panic) on
/// true, since a second occurrence from the same path is almost always
/// a symptom of the first, not new information.
func (dc *Coherence) Report() (bool, string) {
	dc.Lock()
	defer dc.Unlock()
	if !dc.Enabled {
		return false, ""
	}

	if dc.did == nil {
		dc.did = make(map[uintptr]bool)
	}

	var pcs []uintptr
	for sz, got := 30, 30; got >= sz; sz *= 2 {
		pcs = make([]uintptr, 30)
		got = runtime.Callers(3, pcs)
		if got == 0 {
			panic("no")
		}
	}
	h := dc.pchash(pcs)
	if ok := dc.did[h]; !ok {
		dc.did[h] = true
		frames := runtime.CallersFrames(pcs)
		fs := ""
		for {
			fr, more := frames.Next()
			if ok := dc.Whitel[fr.Function]; ok {
				return false, ""
			}
			if fs == "" {
				fs = fmt.Sprintf("%v (%v:%v)\n", fr.Function, fr.File, fr.Line)
			} else {
				fs += fmt.Sprintf("\t%v (%v:%v)\n", fr.Function, fr.File, fr.Line)
			}
			if !more || fr.Function == "runtime.goexit" {
				break
			}
		}
		return true, fs
	}
	return false, ""
}
