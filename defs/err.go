// Package defs holds the error codes and syscall numbers shared across the
// simulator core. Kept as its own package, in the teacher's style, so that
// every component reports failures with the same small vocabulary instead of
// ad-hoc error strings.
package defs

/// Err_t is a packed error code. Zero means success; every failure is a
/// distinct negative constant, mirrored on the course assignment's
/// int-returning C functions (-1 on failure, 0 on success) and on the
/// kernel's own -defs.EFAULT/-defs.ENOMEM convention.
type Err_t int

const (
	/// EINVALREGION marks an invalid rgid, a zeroed symbol slot, or an
	/// out-of-bounds region offset (spec taxonomy: InvalidRegion).
	EINVALREGION Err_t = -(iota + 1)
	/// ENOFREESPACE marks a free-region list that cannot satisfy an
	/// allocation even after heap growth (spec taxonomy: NoFreeSpace).
	ENOFREESPACE
	/// EOOM marks RAM full, all swaps full, and no clean victim
	/// available (spec taxonomy: OutOfMemory).
	EOOM
	/// EREPLACEMENTMISS marks an empty page-tracking list while RAM is
	/// full (spec taxonomy: ReplacementMiss).
	EREPLACEMENTMISS
	/// EFAULT marks an address that does not resolve to a present,
	/// permitted mapping.
	EFAULT
	/// ECONFIG marks a malformed or missing configuration file (spec
	/// taxonomy: ConfigError). Fatal at startup; exit(1).
	ECONFIG
)

/// String renders the error code for logs and dumps.
func (e Err_t) String() string {
	switch e {
	case 0:
		return "ok"
	case EINVALREGION:
		return "invalid region"
	case ENOFREESPACE:
		return "no free space"
	case EOOM:
		return "out of memory"
	case EREPLACEMENTMISS:
		return "replacement miss"
	case EFAULT:
		return "fault"
	case ECONFIG:
		return "config error"
	default:
		return "unknown error"
	}
}

/// Ok reports whether the code represents success.
func (e Err_t) Ok() bool {
	return e == 0
}

/// Syscall numbers and operation selectors (spec §6). All four operations
/// share syscall number 17; a1 (the operation selector) distinguishes them.
const (
	/// SyscallMem is the single syscall number the core dispatches
	/// through; a1 carries the operation selector below.
	SyscallMem = 17

	/// SysmemIncOp extends a vma's sbrk and maps pages. a2 = vmaid,
	/// a3 = aligned byte count.
	SysmemIncOp = 0
	/// SysmemSwpOp copies one page between RAM and a swap device.
	/// a2 = src fpn, a3 = dst fpn, a4 = direction (0 out/1 in),
	/// a5 = swap device index.
	SysmemSwpOp = 1
	/// SysmemIoRead reads one byte from RAM. a2 = phys addr, a3
	/// receives the byte.
	SysmemIoRead = 2
	/// SysmemIoWrite writes one byte to RAM. a2 = phys addr, a3 = byte.
	SysmemIoWrite = 3
)

/// Regs carries the five syscall argument registers, a1..a5, named after
/// the course assignment's sc_regs structure.
type Regs struct {
	A1, A2, A3, A4, A5 int64
}

/// Tid_t identifies a process within the simulator (one thread of control
/// per Pcb; the core does not model multi-threaded processes).
type Tid_t int
