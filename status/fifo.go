package status

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	cerrors "crun-go/errors"
)

const execFifoName = "exec.fifo"

func execFifoPath(stateDir string) string {
	return filepath.Join(stateDir, execFifoName)
}

// CreateExecFifo creates the exec FIFO in stateDir and opens its read end
// nonblocking, returning the open file. The caller owns the descriptor and
// must keep it open until WriteExecFifo is expected to unblock it.
func CreateExecFifo(stateDir string) (*os.File, error) {
	path := execFifoPath(stateDir)
	if _, err := os.Stat(path); err == nil {
		return nil, cerrors.New(cerrors.ErrIO, "status.create_exec_fifo", "exec fifo already exists")
	}
	if err := unix.Mkfifo(path, 0600); err != nil {
		return nil, cerrors.WrapWithDetail(err, cerrors.ErrIO, "status.create_exec_fifo", "mkfifo "+path)
	}
	f, err := os.OpenFile(path, os.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, cerrors.WrapWithDetail(err, cerrors.ErrIO, "status.create_exec_fifo", "open read end")
	}
	return f, nil
}

// WriteExecFifo opens the write end of the exec FIFO in stateDir, unlinks
// the node, and writes a single zero byte to wake the reader blocked on
// the read end opened by CreateExecFifo.
func WriteExecFifo(stateDir string) error {
	path := execFifoPath(stateDir)
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return cerrors.WrapWithDetail(err, cerrors.ErrIO, "status.write_exec_fifo", "open write end")
	}
	defer f.Close()

	if err := os.Remove(path); err != nil {
		return cerrors.WrapWithDetail(err, cerrors.ErrIO, "status.write_exec_fifo", "unlink "+path)
	}

	if _, err := f.Write([]byte{0}); err != nil {
		return cerrors.WrapWithDetail(err, cerrors.ErrIO, "status.write_exec_fifo", "write")
	}
	return nil
}

// HasReadExecFifo reports whether the exec FIFO node still exists in
// stateDir (i.e. no one has called WriteExecFifo yet).
func HasReadExecFifo(stateDir string) bool {
	_, err := os.Stat(execFifoPath(stateDir))
	return err == nil
}
