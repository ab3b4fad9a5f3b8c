package cgroup

import "crun-go/spec"

// applyPids writes pids.max. The field shares the same file name and -1
// "unlimited" sentinel on both hierarchies.
func applyPids(path string, pids *spec.LinuxPids, mode spec.CgroupMode) error {
	if pids == nil || pids.Limit == 0 {
		return nil
	}
	unified := mode == spec.ModeUnified
	dir := subsystemDir(mode, path, "pids")
	return writeFile(dir, "pids.max", serializeLimit(pids.Limit, unified))
}
