package cgroup

import (
	"fmt"
	"strconv"

	"golang.org/x/sys/unix"

	cerrors "crun-go/errors"
	"crun-go/spec"
)

// sharesToWeight maps the cgroup v1 shares range [2, 262144] onto the v2
// cpu.weight range [1, 10000], the monotonic transform the kernel
// documents for migrating shares-based configuration to weight-based.
func sharesToWeight(shares uint64) uint64 {
	if shares < 2 {
		shares = 2
	}
	if shares > 262144 {
		shares = 262144
	}
	return 1 + (shares-2)*9999/262142
}

func applyCPU(path string, cpu *spec.LinuxCPU, mode spec.CgroupMode) error {
	if cpu == nil {
		return nil
	}
	dir := subsystemDir(mode, path, "cpu")
	unified := mode == spec.ModeUnified

	if unified && (cpu.RealtimePeriod != nil || cpu.RealtimeRuntime != nil) {
		return errConfig("cpu.apply", "realtime_period/realtime_runtime are not supported on cgroup v2")
	}

	if cpu.Shares != nil {
		if unified {
			weight := sharesToWeight(*cpu.Shares)
			if err := writeFile(dir, "cpu.weight", strconv.FormatUint(weight, 10)); err != nil {
				return err
			}
		} else {
			if err := writeFile(dir, "cpu.shares", strconv.FormatUint(*cpu.Shares, 10)); err != nil {
				return err
			}
		}
	}

	if unified {
		if cpu.Quota != nil || cpu.Period != nil {
			quota := "max"
			if cpu.Quota != nil && *cpu.Quota >= 0 {
				quota = strconv.FormatInt(*cpu.Quota, 10)
			}
			period := uint64(100000)
			if cpu.Period != nil {
				period = *cpu.Period
			}
			if err := writeFile(dir, "cpu.max", fmt.Sprintf("%s %d", quota, period)); err != nil {
				return err
			}
		}
	} else {
		if err := applyCPUv1PeriodQuota(dir, cpu); err != nil {
			return err
		}
		if cpu.RealtimePeriod != nil {
			if err := writeFile(dir, "cpu.rt_period_us", strconv.FormatUint(*cpu.RealtimePeriod, 10)); err != nil {
				return err
			}
		}
		if cpu.RealtimeRuntime != nil {
			if err := writeFile(dir, "cpu.rt_runtime_us", strconv.FormatInt(*cpu.RealtimeRuntime, 10)); err != nil {
				return err
			}
		}
	}

	if cpu.Idle != nil {
		if err := writeFile(dir, "cpu.idle", strconv.FormatInt(*cpu.Idle, 10)); err != nil {
			return err
		}
	}

	if cpu.Burst != nil {
		name := "cpu.cfs_burst_us"
		if unified {
			name = "cpu.max.burst"
		}
		if err := writeFile(dir, name, strconv.FormatUint(*cpu.Burst, 10)); err != nil {
			return err
		}
	}

	return applyCpuset(subsystemDir(mode, path, "cpuset"), cpu, unified)
}

// applyCPUv1PeriodQuota writes cpu.cfs_period_us then cpu.cfs_quota_us. If
// the period write fails with EINVAL and a quota is also configured, the
// period write is deferred: the kernel validates period against the
// existing quota, so writing quota first can unblock a period decrease.
func applyCPUv1PeriodQuota(dir string, cpu *spec.LinuxCPU) error {
	var periodDeferred bool

	if cpu.Period != nil {
		err := writeFile(dir, "cpu.cfs_period_us", strconv.FormatUint(*cpu.Period, 10))
		if err != nil {
			if cpu.Quota != nil && unwrapErrno(cerrors.Unwrap(err)) == unix.EINVAL {
				periodDeferred = true
			} else {
				return err
			}
		}
	}

	if cpu.Quota != nil {
		if err := writeFile(dir, "cpu.cfs_quota_us", strconv.FormatInt(*cpu.Quota, 10)); err != nil {
			return err
		}
	}

	if periodDeferred {
		if err := writeFile(dir, "cpu.cfs_period_us", strconv.FormatUint(*cpu.Period, 10)); err != nil {
			return err
		}
	}

	return nil
}

// applyCpuset writes cpuset.cpus and cpuset.mems. The attribute names are
// identical on v1 and v2; only the controller directory they live under
// differs, which the caller has already resolved.
func applyCpuset(dir string, cpu *spec.LinuxCPU, unified bool) error {
	if cpu.Cpus != "" {
		if err := writeFile(dir, "cpuset.cpus", cpu.Cpus); err != nil {
			return err
		}
	}
	if cpu.Mems != "" {
		if err := writeFile(dir, "cpuset.mems", cpu.Mems); err != nil {
			return err
		}
	}
	return nil
}
