// Package errors provides predefined sentinel errors for common failure cases.
package errors

// Container and config identity errors.
var (
	// ErrContainerNotFound indicates the container's status directory does
	// not exist.
	ErrContainerNotFound = &ContainerError{
		Kind:   ErrNotFound,
		Detail: "container not found",
	}

	// ErrInvalidContainerID indicates the container ID fails the identifier
	// pattern or contains a path separator.
	ErrInvalidContainerID = &ContainerError{
		Kind:   ErrInvalidConfig,
		Detail: "invalid container ID",
	}

	// ErrEmptyContainerID indicates the container ID is empty.
	ErrEmptyContainerID = &ContainerError{
		Kind:   ErrInvalidConfig,
		Detail: "container ID cannot be empty",
	}

	// ErrInvalidResourceSpec indicates the supplied LinuxResources is
	// internally inconsistent (e.g. swap set below memory limit with no
	// limit, leaf_weight on a path the mode selector resolved to unified).
	ErrInvalidResourceSpec = &ContainerError{
		Kind:   ErrInvalidConfig,
		Detail: "invalid resource spec",
	}

	// ErrInvalidUnifiedKey indicates a unified resource key contains a '/'
	// or otherwise cannot be a single cgroupfs filename.
	ErrInvalidUnifiedKey = &ContainerError{
		Kind:   ErrInvalidConfig,
		Detail: "invalid unified resource key",
	}
)

// Cgroup controller errors.
var (
	// ErrControllerUnavailable indicates the availability diagnostic
	// determined the requested controller is not present at the resolved
	// cgroup path.
	ErrControllerUnavailable = &ContainerError{
		Kind:   ErrCgroup,
		Detail: "controller not available",
	}

	// ErrCgroupPathNotFound indicates the cgroup directory does not exist.
	ErrCgroupPathNotFound = &ContainerError{
		Kind:   ErrCgroup,
		Detail: "cgroup path not found",
	}

	// ErrUnsupportedOnMode indicates a resource field only makes sense on a
	// different cgroup mode than the one resolved for the target path (e.g.
	// network class/priority or legacy blkio fields on a unified path).
	ErrUnsupportedOnMode = &ContainerError{
		Kind:   ErrInvalidConfig,
		Detail: "resource field unsupported on this cgroup mode",
	}

	// ErrDeviceProgramLoad indicates the device filter eBPF program could
	// not be loaded or attached.
	ErrDeviceProgramLoad = &ContainerError{
		Kind:   ErrKernelRejected,
		Detail: "failed to load device filter program",
	}
)

// Status store errors.
var (
	// ErrStatusNotFound indicates the status file does not exist for
	// the requested container.
	ErrStatusNotFound = &ContainerError{
		Kind:   ErrNotFound,
		Detail: "status not found",
	}

	// ErrStatusCorrupt indicates the status document is missing a required
	// field or failed to unmarshal.
	ErrStatusCorrupt = &ContainerError{
		Kind:   ErrParse,
		Detail: "corrupt status document",
	}

	// ErrStatWriteFailed indicates the atomic write of a status document
	// failed (temp file create, write, sync, rename).
	ErrStatWriteFailed = &ContainerError{
		Kind:   ErrIO,
		Detail: "failed to write status document",
	}

	// ErrPidStatParse indicates /proc/<pid>/stat could not be parsed into
	// its state and start-time fields.
	ErrPidStatParse = &ContainerError{
		Kind:   ErrParse,
		Detail: "failed to parse pid stat",
	}

	// ErrProcessIdentityMismatch indicates the recorded process start time
	// does not match the live process occupying the pid.
	ErrProcessIdentityMismatch = &ContainerError{
		Kind:   ErrIdentityMismatch,
		Detail: "process identity mismatch",
	}

	// ErrExecFifoExists indicates the exec FIFO already exists where a
	// fresh one was expected.
	ErrExecFifoExists = &ContainerError{
		Kind:   ErrIO,
		Detail: "exec fifo already exists",
	}

	// ErrExecFifoMissing indicates the exec FIFO does not exist where one
	// was expected.
	ErrExecFifoMissing = &ContainerError{
		Kind:   ErrNotFound,
		Detail: "exec fifo missing",
	}
)
