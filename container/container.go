// Package container ties the cgroup resource applier and the status store
// together into the container lifecycle operations a runtime front end
// calls: create, start, inspect, list, delete.
package container

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"crun-go/cgroup"
	cerrors "crun-go/errors"
	"crun-go/spec"
	"crun-go/status"
)

// containerIDRegex mirrors the identifier grammar accepted by the OCI CLI
// convention: alphanumeric, optionally followed by dashes, underscores, or
// dots. It rejects anything that could be a path component trick before
// the store's own '/' check ever runs.
var containerIDRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// ValidateContainerID checks that id is safe to use as a state-directory
// and cgroup path component.
func ValidateContainerID(id string) error {
	if id == "" {
		return cerrors.ErrEmptyContainerID
	}
	if len(id) > 1024 {
		return cerrors.WrapWithDetail(nil, cerrors.ErrInvalidConfig, "container.validate",
			fmt.Sprintf("container ID too long (max 1024 characters): %d", len(id)))
	}
	if !containerIDRegex.MatchString(id) || filepath.Clean(id) != id {
		return cerrors.WrapWithDetail(nil, cerrors.ErrInvalidConfig, "container.validate",
			fmt.Sprintf("container ID %q contains invalid characters", id))
	}
	return nil
}

// Container is a handle on one container's lifecycle state. Bundle and
// Rootfs are recorded for the status document only; this package does not
// read or act on their contents (bundle loading and rootfs setup are the
// caller's concern).
type Container struct {
	mu sync.RWMutex

	ID         string
	Bundle     string
	Rootfs     string
	CgroupPath string

	store *status.Store
}

// New validates id and returns a handle for it. It does not touch disk;
// call Create to materialize the container's state directory.
func New(store *status.Store, id, bundle, rootfs, cgroupPath string) (*Container, error) {
	if err := ValidateContainerID(id); err != nil {
		return nil, err
	}
	return &Container{
		ID:         id,
		Bundle:     bundle,
		Rootfs:     rootfs,
		CgroupPath: cgroupPath,
		store:      store,
	}, nil
}

// Create applies resources to the container's cgroup, opens the exec
// FIFO, and persists the initial status document recording pid as the
// worker process. On any failure once the state directory exists
// (including a failed cgroup write), the partially created state directory
// is cleaned up.
//
// The caller is responsible for having already placed pid in CgroupPath
// (this package only configures the cgroup's limits, per the resource
// applier's scope).
func (c *Container) Create(pid int, resources *spec.ResourceSpec, needDeviceProgram bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Create(c.ID); err != nil {
		return err
	}

	cleanup := func() { c.store.Delete(c.ID) }

	if err := cgroup.Apply(c.CgroupPath, resources, needDeviceProgram); err != nil {
		cleanup()
		return err
	}

	fifo, err := status.CreateExecFifo(c.store.StateDir(c.ID))
	if err != nil {
		cleanup()
		return err
	}
	fifo.Close()

	cs := &status.ContainerStatus{
		Pid:        pid,
		CgroupPath: c.CgroupPath,
		Rootfs:     c.Rootfs,
		Bundle:     c.Bundle,
		Created:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := c.store.Write(c.ID, cs); err != nil {
		cleanup()
		return err
	}
	return nil
}

// Start releases a container blocked in the "created" state by writing
// the exec FIFO, waking the worker process past its rendezvous read.
func (c *Container) Start() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return status.WriteExecFifo(c.store.StateDir(c.ID))
}

// State returns the persisted status document and whether its recorded
// worker process is still running.
func (c *Container) State() (*status.ContainerStatus, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cs, err := c.store.Read(c.ID)
	if err != nil {
		return nil, false, err
	}
	running, err := c.store.IsRunning(cs)
	if err != nil {
		return nil, false, err
	}
	return cs, running, nil
}

// Delete removes the container's on-disk state. If the worker process is
// still running, Delete fails unless force is set, in which case the
// process is sent SIGKILL first.
func (c *Container) Delete(force bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cs, err := c.store.Read(c.ID)
	if err != nil && !cerrors.IsKind(err, cerrors.ErrNotFound) {
		return err
	}
	if err == nil {
		running, err := c.store.IsRunning(cs)
		if err != nil {
			return err
		}
		if running {
			if !force {
				return cerrors.New(cerrors.ErrInvalidConfig, "container.delete", "container is running, use force to kill it")
			}
			if killErr := unix.Kill(cs.Pid, unix.SIGKILL); killErr != nil && killErr != unix.ESRCH {
				return cerrors.WrapWithContainer(killErr, cerrors.ErrIO, "container.delete", c.ID)
			}
		}
	}
	return c.store.Delete(c.ID)
}

// Inspect reads a container's status document without constructing a full
// lifecycle handle, for read-only callers (state, list).
func Inspect(store *status.Store, id string) (*status.ContainerStatus, bool, error) {
	if err := ValidateContainerID(id); err != nil {
		return nil, false, err
	}
	cs, err := store.Read(id)
	if err != nil {
		return nil, false, err
	}
	running, err := store.IsRunning(cs)
	if err != nil {
		return nil, false, err
	}
	return cs, running, nil
}

// Entry is one row of a container listing.
type Entry struct {
	ID      string
	Status  *status.ContainerStatus
	Running bool
}

// List enumerates the containers tracked by store. A container whose status
// document cannot be read, or whose liveness cannot be determined, is left
// out of the result without an error.
func List(store *status.Store) ([]Entry, error) {
	ids, err := store.Enumerate()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		cs, err := store.Read(id)
		if err != nil {
			continue
		}
		running, err := store.IsRunning(cs)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{ID: id, Status: cs, Running: running})
	}
	return entries, nil
}
