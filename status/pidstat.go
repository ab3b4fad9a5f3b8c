package status

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	cerrors "crun-go/errors"
)

// PidStat is the subset of /proc/<pid>/stat this package cares about.
type PidStat struct {
	State     byte
	StartTime uint64
}

// ReadPidStat parses /proc/<pid>/stat. The command field (field 2) is
// parenthesized and may itself contain spaces or parens, so parsing seeks
// to the last ')' in the line before tokenizing the remaining
// whitespace-separated fields. State is the first field after that point;
// start-time is the 20th field after it (field 22 overall).
func ReadPidStat(pid int) (*PidStat, error) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cerrors.WrapWithDetail(err, cerrors.ErrNotFound, "status.pidstat", "process not found")
		}
		return nil, cerrors.Wrap(err, cerrors.ErrIO, "status.pidstat")
	}
	return parsePidStat(string(data))
}

func parsePidStat(content string) (*PidStat, error) {
	idx := strings.LastIndexByte(content, ')')
	if idx < 0 || idx+2 > len(content) {
		return nil, cerrors.New(cerrors.ErrParse, "status.pidstat", "malformed /proc/<pid>/stat: no closing ')' for command field")
	}
	fields := strings.Fields(content[idx+1:])
	// fields[0] = state (field 3), fields[19] = start-time (field 22).
	if len(fields) < 20 {
		return nil, cerrors.New(cerrors.ErrParse, "status.pidstat", "malformed /proc/<pid>/stat: too few fields after command")
	}
	state := fields[0]
	if len(state) != 1 {
		return nil, cerrors.New(cerrors.ErrParse, "status.pidstat", "malformed /proc/<pid>/stat: state field is not a single character")
	}
	startTime, err := strconv.ParseUint(fields[19], 10, 64)
	if err != nil {
		return nil, cerrors.WrapWithDetail(err, cerrors.ErrParse, "status.pidstat", "malformed start-time field")
	}
	return &PidStat{State: state[0], StartTime: startTime}, nil
}

// signalZero reports whether pid exists by sending it signal 0. It is a
// package variable rather than a plain function so tests can substitute a
// stub that returns an error other than ESRCH without needing a real
// unreachable pid.
var signalZero = realSignalZero

func realSignalZero(pid int) error {
	return unix.Kill(pid, 0)
}

// IsRunning implements the liveness check: pid must exist, and unless
// startTime is 0 (a legacy record predating identity checks), the
// process currently occupying that pid must be the same one recorded,
// verified by comparing /proc/<pid>/stat start-time, with Z/X states
// never counted as running regardless of start-time.
//
// ESRCH from the existence probe means stopped, not an error. Any other
// error from the probe, or from reading /proc/<pid>/stat for a reason
// other than the file being gone, is a genuine failure and is returned
// rather than folded into a false "not running" result.
func IsRunning(pid int, startTime uint64) (bool, error) {
	if err := signalZero(pid); err != nil {
		if err == unix.ESRCH {
			return false, nil
		}
		return false, cerrors.WrapWithDetail(err, cerrors.ErrIO, "status.pidstat.is_running", "kill(pid, 0)")
	}
	if startTime == 0 {
		return true, nil
	}
	st, err := ReadPidStat(pid)
	if err != nil {
		if cerrors.IsKind(err, cerrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if st.StartTime != startTime {
		return false, nil
	}
	return st.State != 'Z' && st.State != 'X', nil
}
