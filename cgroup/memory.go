package cgroup

import (
	"fmt"
	"strconv"

	"golang.org/x/sys/unix"

	cerrors "crun-go/errors"
	"crun-go/spec"
)

// applyMemory writes the memory controller's files for the given mode. It
// implements the ordering contract between the limit and swap writes: on
// v1 a limit write that fails with EINVAL because it would shrink below
// the current swap usage is deferred until after the swap write.
func applyMemory(path string, mem *spec.LinuxMemory, mode spec.CgroupMode) error {
	if mem == nil {
		return nil
	}
	dir := subsystemDir(mode, path, "memory")
	unified := mode == spec.ModeUnified

	if unified {
		if mem.Kernel != nil || mem.KernelTCP != nil || mem.Swappiness != nil ||
			mem.DisableOOMKiller != nil || mem.UseHierarchy != nil {
			return errConfig("memory.apply", "kernel/kernel_tcp/swappiness/disable_oom_killer/use_hierarchy are not supported on cgroup v2")
		}
	}

	if mem.CheckBeforeUpdate != nil && *mem.CheckBeforeUpdate && unified {
		if err := checkMemoryBeforeUpdate(dir, mem); err != nil {
			return err
		}
	}

	if unified && mem.Limit != nil && mem.Swap != nil && *mem.Swap > 0 && *mem.Swap < *mem.Limit {
		return errConfig("memory.apply", "swap must be >= limit on cgroup v2")
	}

	var limitDeferred bool
	if mem.Limit != nil {
		if err := writeMemoryLimit(dir, *mem.Limit, unified); err != nil {
			if !unified && mem.Swap != nil && unwrapErrno(cerrors.Unwrap(err)) == unix.EINVAL {
				limitDeferred = true
			} else {
				return err
			}
		}
	}

	if mem.Swap != nil {
		if err := writeMemorySwap(dir, mem, unified); err != nil {
			return err
		}
	}

	if limitDeferred {
		if err := writeMemoryLimit(dir, *mem.Limit, unified); err != nil {
			return err
		}
	}

	if mem.Reservation != nil {
		name := "memory.soft_limit_in_bytes"
		if unified {
			name = "memory.low"
		}
		if err := writeFile(dir, name, serializeLimit(*mem.Reservation, unified)); err != nil {
			return err
		}
	}

	if !unified {
		if mem.Kernel != nil {
			if err := writeFile(dir, "memory.kmem.limit_in_bytes", serializeLimit(*mem.Kernel, false)); err != nil {
				return err
			}
		}
		if mem.KernelTCP != nil {
			if err := writeFile(dir, "memory.kmem.tcp.limit_in_bytes", serializeLimit(*mem.KernelTCP, false)); err != nil {
				return err
			}
		}
		if mem.Swappiness != nil {
			if err := writeFile(dir, "memory.swappiness", strconv.FormatUint(*mem.Swappiness, 10)); err != nil {
				return err
			}
		}
		if mem.DisableOOMKiller != nil && *mem.DisableOOMKiller {
			if err := writeFile(dir, "memory.oom_control", "1"); err != nil {
				return err
			}
		}
		if mem.UseHierarchy != nil && *mem.UseHierarchy {
			if err := writeFile(dir, "memory.use_hierarchy", "1"); err != nil {
				return err
			}
		}
	}

	return nil
}

func writeMemoryLimit(dir string, limit int64, unified bool) error {
	name := "memory.limit_in_bytes"
	if unified {
		name = "memory.max"
	}
	return writeFile(dir, name, serializeLimit(limit, unified))
}

// writeMemorySwap writes the swap controller file. On v2 the kernel wants
// the delta between the swap ceiling and the memory limit, not the
// absolute value, and requires swap >= limit whenever swap is bounded.
func writeMemorySwap(dir string, mem *spec.LinuxMemory, unified bool) error {
	swap := *mem.Swap
	if unified {
		if swap == -1 {
			return writeFileOptional(dir, "memory.swap.max", "max")
		}
		limit := int64(0)
		if mem.Limit != nil && *mem.Limit > 0 {
			limit = *mem.Limit
		}
		if swap > 0 && swap < limit {
			return errConfig("memory.apply", "swap must be >= limit on cgroup v2")
		}
		delta := swap - limit
		return writeFileOptional(dir, "memory.swap.max", strconv.FormatInt(delta, 10))
	}
	return writeFileOptional(dir, "memory.memsw.limit_in_bytes", serializeLimit(swap, false))
}

// checkMemoryBeforeUpdate implements the check_before_update guard: reject
// the update before any write if the proposed ceiling would be less than
// or equal to current usage.
func checkMemoryBeforeUpdate(dir string, mem *spec.LinuxMemory) error {
	currentStr, err := readFile(dir, "memory.current")
	if err != nil {
		return err
	}
	swapCurrentStr, err := readFile(dir, "memory.swap.current")
	if err != nil {
		return err
	}
	current, err := strconv.ParseInt(currentStr, 10, 64)
	if err != nil {
		return cerrors.Wrap(err, cerrors.ErrParse, "memory.check_before_update")
	}
	swapCurrent, err := strconv.ParseInt(swapCurrentStr, 10, 64)
	if err != nil {
		return cerrors.Wrap(err, cerrors.ErrParse, "memory.check_before_update")
	}

	var proposed int64
	if mem.Limit != nil {
		proposed += *mem.Limit
	}
	if mem.Swap != nil {
		proposed += *mem.Swap
	}
	if proposed <= current+swapCurrent {
		return cerrors.New(cerrors.ErrInvalidConfig, "memory.check_before_update",
			fmt.Sprintf("proposed ceiling %d does not exceed current usage %d", proposed, current+swapCurrent))
	}
	return nil
}
