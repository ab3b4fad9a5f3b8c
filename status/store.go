package status

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	cerrors "crun-go/errors"
	"crun-go/logging"
)

const statusFileName = "status"

// Store roots the on-disk layout for container status documents:
// <root>/<id>/status and <root>/<id>/exec.fifo.
type Store struct {
	root string
}

// defaultRoot returns $XDG_RUNTIME_DIR/crun if set and non-empty, else
// /run/crun.
func defaultRoot() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "crun")
	}
	return "/run/crun"
}

// NewStore opens the status store rooted at root, creating it with mode
// 0700 if necessary. An empty root selects the default.
func NewStore(root string) (*Store, error) {
	if root == "" {
		root = defaultRoot()
	}
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, cerrors.WrapWithDetail(err, cerrors.ErrIO, "status.store.open", "mkdir "+root)
	}
	return &Store{root: root}, nil
}

func validateID(id string) error {
	if id == "" || strings.Contains(id, "/") {
		return cerrors.New(cerrors.ErrInvalidConfig, "status.store", "container id must not contain '/'")
	}
	return nil
}

func (s *Store) containerDir(id string) string {
	return filepath.Join(s.root, id)
}

func (s *Store) statusPath(id string) string {
	return filepath.Join(s.containerDir(id), statusFileName)
}

// Create makes the container's state directory, ready to hold a status
// document and an exec FIFO.
func (s *Store) Create(id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	dir := s.containerDir(id)
	if err := os.Mkdir(dir, 0700); err != nil {
		return cerrors.WrapWithDetail(err, cerrors.ErrIO, "status.store.create", "mkdir "+dir)
	}
	return nil
}

// StateDir returns the per-container state directory, the home of the
// status file and the exec FIFO.
func (s *Store) StateDir(id string) string {
	return s.containerDir(id)
}

// Write captures the worker process's current start-time from
// /proc/<pid>/stat, encodes the status document, and commits it via
// write-temp-then-rename so concurrent readers never observe a partial
// file.
func (s *Store) Write(id string, cs *ContainerStatus) error {
	if err := validateID(id); err != nil {
		return err
	}
	pidStat, err := ReadPidStat(cs.Pid)
	if err != nil {
		return err
	}
	cs.ProcessStartTime = pidStat.StartTime

	data, err := Marshal(cs)
	if err != nil {
		return err
	}

	path := s.statusPath(id)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return cerrors.WrapWithDetail(err, cerrors.ErrIO, "status.store.write", "write "+tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return cerrors.WrapWithDetail(err, cerrors.ErrIO, "status.store.write", "rename onto "+path)
	}
	return nil
}

// Read loads and validates the status document for id.
func (s *Store) Read(id string) (*ContainerStatus, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	path := s.statusPath(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if _, derr := os.Stat(s.containerDir(id)); os.IsNotExist(derr) {
				return nil, cerrors.New(cerrors.ErrNotFound, "status.store.read", fmt.Sprintf("container %q does not exist", id))
			}
			return nil, cerrors.WrapWithDetail(err, cerrors.ErrNotFound, "status.store.read", "status document "+path)
		}
		return nil, cerrors.WrapWithDetail(err, cerrors.ErrIO, "status.store.read", "read "+path)
	}
	return Unmarshal(data)
}

// Enumerate lists the ids of every container with a readable status
// document under the store's root, skipping dot-entries and directories
// that lack a status file (a container mid-creation, for instance).
func (s *Store) Enumerate() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, cerrors.WrapWithDetail(err, cerrors.ErrIO, "status.store.enumerate", "readdir "+s.root)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.root, name, statusFileName)); err != nil {
			continue
		}
		ids = append(ids, name)
	}
	return ids, nil
}

// Delete removes the container's state directory, tolerating lingering
// bind mounts left behind by a crashed or killed worker. Each entry is
// first unlinked as a file; a directory retries as AT_REMOVEDIR; an
// EBUSY failure there means something is mounted on it, so the mount is
// force-detached and removal retried; an ENOTEMPTY failure means the
// directory has unlisted children and is recursed into.
func (s *Store) Delete(id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	dir := s.containerDir(id)
	if err := removeAll(dir); err != nil {
		return cerrors.WrapWithDetail(err, cerrors.ErrIO, "status.store.delete", "remove "+dir)
	}
	logging.Info("deleted container state", "container_id", id, "dir", dir)
	return nil
}

// removeAll recursively tears down path using the unlinkat/AT_REMOVEDIR/
// umount2(MNT_DETACH) escalation described for container teardown, then
// removes path itself as a directory.
func removeAll(path string) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		child := filepath.Join(path, e.Name())
		if err := removeEntry(child); err != nil {
			return err
		}
	}
	return unlinkatRemoveDir(path)
}

func removeEntry(path string) error {
	if err := unix.Unlink(path); err == nil {
		return nil
	}

	rmErr := unix.Rmdir(path)
	if rmErr == nil {
		return nil
	}
	if rmErr == unix.EBUSY {
		if detachErr := forceDetach(path); detachErr == nil {
			if unix.Rmdir(path) == nil {
				return nil
			}
		}
	}
	if rmErr == unix.ENOTEMPTY {
		if err := removeAll(path); err != nil {
			return err
		}
		return nil
	}
	return rmErr
}

// forceDetach resolves path to an open fd (to guard against it being
// replaced between stat and umount) and lazily unmounts whatever is
// mounted there.
func forceDetach(path string) error {
	fd, err := unix.Open(path, unix.O_PATH, 0)
	if err != nil {
		return err
	}
	defer unix.Close(fd)

	resolved, err := os.Readlink(fmt.Sprintf("/proc/self/fd/%d", fd))
	if err != nil {
		resolved = path
	}
	return unix.Unmount(resolved, unix.MNT_DETACH)
}

func unlinkatRemoveDir(path string) error {
	parent := filepath.Dir(path)
	name := filepath.Base(path)
	dirFd, err := unix.Open(parent, unix.O_DIRECTORY, 0)
	if err != nil {
		return err
	}
	defer unix.Close(dirFd)

	return unix.Unlinkat(dirFd, name, unix.AT_REMOVEDIR)
}

// IsRunning reports whether the container's recorded worker process is
// still the one originally launched, per the liveness contract. An error
// means liveness could not be determined (e.g. EPERM probing the pid),
// not that the container is stopped.
func (s *Store) IsRunning(cs *ContainerStatus) (bool, error) {
	return IsRunning(cs.Pid, cs.ProcessStartTime)
}
