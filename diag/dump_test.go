package diag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/thanhtoan23/OS-Assignment/mem"
	"github.com/thanhtoan23/OS-Assignment/pgtbl"
	"github.com/thanhtoan23/OS-Assignment/proc"
	"github.com/thanhtoan23/OS-Assignment/tlb"
)

func TestPadRightAlignsShortStrings(t *testing.T) {
	if got := pad("ab", 5); got != "   ab" {
		t.Fatalf("pad(%q, 5) = %q", "ab", got)
	}
}

func TestPadLeavesStringsAtOrOverWidthUnchanged(t *testing.T) {
	if got := pad("abcdef", 3); got != "abcdef" {
		t.Fatalf("pad should not truncate, got %q", got)
	}
}

func TestDumpPhysMemReportsOnlyNonZeroBytes(t *testing.T) {
	d := mem.NewDevice(32, false)
	if err := d.Format(16); err != nil {
		t.Fatalf("Format: %v", err)
	}
	d.Write(0, 0)
	d.Write(5, 0xAB)

	var buf bytes.Buffer
	DumpPhysMem(&buf, "ram", d)
	out := buf.String()
	if !strings.Contains(out, "0xab") {
		t.Fatalf("expected the written byte in the dump, got:\n%s", out)
	}
	if strings.Count(out, "\n") != 2 {
		t.Fatalf("expected a header line plus one non-zero byte line, got:\n%s", out)
	}
}

func TestDumpPageTableSkipsUnmappedVpns(t *testing.T) {
	tbl := pgtbl.New()
	pte, _ := tbl.Lookup(0, true)
	*pte = pgtbl.InitPte(true, 7, false, false, 0, 0)

	var buf bytes.Buffer
	DumpPageTable(&buf, 1, tbl)
	out := buf.String()
	if !strings.Contains(out, "vpn=") || !strings.Contains(out, "fpn=") {
		t.Fatalf("expected the mapped vpn in the dump, got:\n%s", out)
	}
}

func TestDumpRegsRendersEveryRegister(t *testing.T) {
	p := proc.New(3, 0, 0, 10, 0, 1024)
	p.Regs[0] = 42

	var buf bytes.Buffer
	DumpRegs(&buf, p)
	out := buf.String()
	if strings.Count(out, "\n") != proc.NumRegs+1 {
		t.Fatalf("expected one header line plus %d register lines, got:\n%s", proc.NumRegs, out)
	}
	if !strings.Contains(out, "42") {
		t.Fatalf("expected register value in the dump, got:\n%s", out)
	}
}

func TestDumpTLBReportsCurrentStats(t *testing.T) {
	tl := tlb.New(4, 4)
	tl.Lookup(tlb.Key{Vpn: 0, Pid: 1})
	tl.Insert(tlb.Key{Vpn: 0, Pid: 1}, 2)
	tl.Lookup(tlb.Key{Vpn: 0, Pid: 1})

	var buf bytes.Buffer
	DumpTLB(&buf, tl)
	out := buf.String()
	if !strings.Contains(out, "hits=1") || !strings.Contains(out, "misses=1") {
		t.Fatalf("unexpected tlb dump: %q", out)
	}
}
