package cgroup

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	cerrors "crun-go/errors"
	"crun-go/spec"
)

// cgroupV1Root is the mount point for the classic per-controller cgroup v1
// hierarchy; each subsystem is mounted separately beneath it.
const cgroupV1Root = "/sys/fs/cgroup"

// subsystemDir resolves the on-disk controller directory for a container's
// cgroup path. On the unified hierarchy there is a single shared tree and
// path already names it directly. On the legacy or hybrid hierarchy, each
// controller is mounted separately at cgroupV1Root/<subsystem>, and path is
// relative to that mount, matching open_cgroup_subsystem's
// append_paths(CGROUP_ROOT, subsystem, path) construction.
func subsystemDir(mode spec.CgroupMode, path, subsystem string) string {
	if mode == spec.ModeUnified {
		return path
	}
	return filepath.Join(cgroupV1Root, subsystem, path)
}

// writeFile opens name under dir for writing and writes value, retrying on
// EINTR. The write is wrapped by the availability diagnostic so a missing
// controller produces a precise error instead of a raw errno. It is a
// package variable rather than a plain function so tests can substitute a
// recorder that captures the write sequence without depending on regular
// files to accumulate writes the way kernel pseudo-files do.
var writeFile = realWriteFile

func realWriteFile(dir, name, value string) error {
	path := filepath.Join(dir, name)
	f, err := openRetry(path, os.O_WRONLY, 0)
	if err != nil {
		return diagnose(dir, name, err)
	}
	defer f.Close()

	if err := writeRetry(f, value); err != nil {
		return diagnose(dir, name, err)
	}
	return nil
}

// writeFileOptional behaves like writeFile but swallows ENOENT, used for
// kernel files that are legitimately absent (swap accounting disabled).
func writeFileOptional(dir, name, value string) error {
	err := writeFile(dir, name, value)
	if err == nil {
		return nil
	}
	if isMissing(err) {
		return nil
	}
	return err
}

// isMissing reports whether err ultimately stems from ENOENT, regardless
// of whether the availability diagnostic classified it as a missing
// controller or passed it through as a kernel rejection (the latter
// happens when the controller exists but this particular attribute file,
// e.g. an alternate I/O scheduler's file, does not).
func isMissing(err error) bool {
	var cerr *cerrors.ContainerError
	if !cerrors.As(err, &cerr) {
		return false
	}
	return unwrapErrno(cerr.Unwrap()) == unix.ENOENT
}

// readFile reads name under dir, retrying on EINTR, and returns the
// trimmed content.
func readFile(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	f, err := openRetry(path, os.O_RDONLY, 0)
	if err != nil {
		return "", diagnose(dir, name, err)
	}
	defer f.Close()

	var buf strings.Builder
	chunk := make([]byte, 4096)
	for {
		n, err := f.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if err != nil {
			break
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

// openRetry opens path, retrying the open on EINTR.
func openRetry(path string, flag int, perm os.FileMode) (*os.File, error) {
	for {
		f, err := os.OpenFile(path, flag, perm)
		if err == nil {
			return f, nil
		}
		if unwrapErrno(err) == unix.EINTR {
			continue
		}
		return nil, err
	}
}

// writeRetry writes the full value to f as a single write, retrying on
// EINTR. A trailing newline is appended if not already present, matching
// what the kernel's cgroup attribute parsers expect from a single write.
func writeRetry(f *os.File, value string) error {
	if !strings.HasSuffix(value, "\n") {
		value += "\n"
	}
	b := []byte(value)
	for {
		_, err := f.Write(b)
		if err == nil {
			return nil
		}
		if unwrapErrno(err) == unix.EINTR {
			continue
		}
		return err
	}
}

// unwrapErrno extracts a syscall.Errno-compatible unix.Errno from err, if
// present.
func unwrapErrno(err error) unix.Errno {
	if pe, ok := err.(*os.PathError); ok {
		if errno, ok := pe.Err.(unix.Errno); ok {
			return errno
		}
	}
	if errno, ok := err.(unix.Errno); ok {
		return errno
	}
	return 0
}

// serializeLimit renders a resource value that uses -1 as the "unlimited"
// sentinel, writing the literal "max" on v2 and the decimal on v1.
func serializeLimit(v int64, unified bool) string {
	if v == -1 && unified {
		return "max"
	}
	return strconv.FormatInt(v, 10)
}

// deviceToken renders a device number, "*" for the wildcard case.
func deviceToken(v *int64) string {
	if v == nil {
		return "*"
	}
	return strconv.FormatInt(*v, 10)
}

func errIO(op, detail string, err error) error {
	return cerrors.WrapWithDetail(err, cerrors.ErrIO, op, detail)
}

func errConfig(op, detail string) error {
	return cerrors.New(cerrors.ErrInvalidConfig, op, detail)
}

func errKernelRejected(op, filename string, err error) error {
	return cerrors.WrapWithDetail(err, cerrors.ErrKernelRejected, op, "kernel rejected write to "+filename)
}
