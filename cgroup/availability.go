package cgroup

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	cerrors "crun-go/errors"
)

// diagnose wraps a raw open/write error against dir/name. When the errno is
// ENOENT, EPERM or EACCES, it tries to turn the error into a precise
// "controller X not available under path" message by reading
// cgroup.controllers in the same directory.
func diagnose(dir, name string, err error) error {
	if err == nil {
		return nil
	}
	errno := unwrapErrno(err)
	switch errno {
	case unix.ENOENT, unix.EPERM, unix.EACCES:
	default:
		return errKernelRejected("cgroup.write", name, err)
	}

	controller, _, found := strings.Cut(name, ".")
	if !found || controller == "cgroup" {
		return errKernelRejected("cgroup.write", name, err)
	}

	controllers, rerr := readControllerList(dir)
	if rerr != nil {
		return errKernelRejected("cgroup.write", name, err)
	}

	for _, c := range controllers {
		if c == controller {
			return errKernelRejected("cgroup.write", name, err)
		}
	}

	abs := resolveDirPath(dir)
	return cerrors.WrapWithDetail(err, cerrors.ErrCgroup, "cgroup.availability",
		fmt.Sprintf("controller %s is not available under %s", controller, abs))
}

// readControllerList reads and splits cgroup.controllers in dir.
func readControllerList(dir string) ([]string, error) {
	f, err := os.Open(dir + "/cgroup.controllers")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sb strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			sb.Write(buf[:n])
		}
		if err != nil {
			break
		}
	}
	return strings.Fields(sb.String()), nil
}

// resolveDirPath resolves dir to an absolute path via /proc/self/fd,
// falling back to the literal dir string if the fd can't be opened or the
// symlink can't be read.
func resolveDirPath(dir string) string {
	f, err := os.Open(dir)
	if err != nil {
		return dir
	}
	defer f.Close()

	link := fmt.Sprintf("/proc/self/fd/%d", f.Fd())
	resolved, err := os.Readlink(link)
	if err != nil {
		return dir
	}
	return resolved
}
