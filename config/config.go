// Package config parses the simulator's line-oriented ASCII
// configuration file (spec §6) and resolves program paths against the
// input/proc/ directory using the teacher's path-joining helper
// (ustr.Ustr.ExtendStr).
package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/thanhtoan23/OS-Assignment/defs"
	"github.com/thanhtoan23/OS-Assignment/ustr"
)

/// ProgramsDir is the directory program paths are resolved relative to
/// (spec §6: "Program paths are resolved relative to input/proc/").
const ProgramsDir = "input/proc"

/// ProcessSpec is one admitted-process line of the config file.
type ProcessSpec struct {
	StartTime int64
	Path      string
	Priority  int
}

/// Config is the fully parsed configuration (spec §6's three line
/// groups): scheduling parameters, device sizes, and process specs.
type Config struct {
	TimeSlot     int
	NumCPUs      int
	NumProcesses int

	RamSize   int
	SwapSizes [4]int // 0 means "device not configured"

	Processes []ProcessSpec
}

// fields splits a line on runs of whitespace, the course assignment's
// config format throughout.
func fields(line string) []string {
	return strings.Fields(line)
}

func parseInt(tok string) (int, error) {
	return strconv.Atoi(tok)
}

/// Parse reads a Config from r. Any malformed line is a ConfigError
/// (spec §7: fatal at startup, exit(1)).
func Parse(r io.Reader) (*Config, error) {
	sc := bufio.NewScanner(r)

	line1, ok := nextNonEmpty(sc)
	if !ok {
		return nil, configErr("missing scheduling parameters line")
	}
	f := fields(line1)
	if len(f) != 3 {
		return nil, configErr("scheduling line: want 3 fields, got %d", len(f))
	}
	cfg := &Config{}
	var err error
	if cfg.TimeSlot, err = parseInt(f[0]); err != nil {
		return nil, configErr("time_slot: %v", err)
	}
	if cfg.NumCPUs, err = parseInt(f[1]); err != nil {
		return nil, configErr("num_cpus: %v", err)
	}
	if cfg.NumProcesses, err = parseInt(f[2]); err != nil {
		return nil, configErr("num_processes: %v", err)
	}

	line2, ok := nextNonEmpty(sc)
	if !ok {
		return nil, configErr("missing device sizes line")
	}
	f = fields(line2)
	if len(f) != 5 {
		return nil, configErr("device sizes line: want 5 fields, got %d", len(f))
	}
	if cfg.RamSize, err = parseInt(f[0]); err != nil {
		return nil, configErr("ram_size: %v", err)
	}
	for i := 0; i < 4; i++ {
		if cfg.SwapSizes[i], err = parseInt(f[i+1]); err != nil {
			return nil, configErr("swap%d_size: %v", i, err)
		}
	}

	for i := 0; i < cfg.NumProcesses; i++ {
		line, ok := nextNonEmpty(sc)
		if !ok {
			return nil, configErr("process %d: missing line", i)
		}
		f := fields(line)
		if len(f) != 3 {
			return nil, configErr("process %d: want 3 fields, got %d", i, len(f))
		}
		var spec ProcessSpec
		st, err := parseInt(f[0])
		if err != nil {
			return nil, configErr("process %d start_time: %v", i, err)
		}
		spec.StartTime = int64(st)
		spec.Path = ResolveProgramPath(f[1])
		if spec.Priority, err = parseInt(f[2]); err != nil {
			return nil, configErr("process %d priority: %v", i, err)
		}
		cfg.Processes = append(cfg.Processes, spec)
	}

	if err := sc.Err(); err != nil {
		return nil, configErr("scanning config: %v", err)
	}
	return cfg, nil
}

/// ResolveProgramPath joins a configured program name onto ProgramsDir.
func ResolveProgramPath(name string) string {
	return ustr.MkUstr().ExtendStr(ProgramsDir).ExtendStr(name).String()[1:]
}

func nextNonEmpty(sc *bufio.Scanner) (string, bool) {
	for sc.Scan() {
		l := strings.TrimSpace(sc.Text())
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		return l, true
	}
	return "", false
}

/// ConfigErr wraps defs.ECONFIG with a human-readable message.
type ConfigErr struct {
	Code defs.Err_t
	Msg  string
}

func (e *ConfigErr) Error() string { return e.Msg }

func configErr(format string, args ...interface{}) error {
	return &ConfigErr{Code: defs.ECONFIG, Msg: fmt.Sprintf(format, args...)}
}
