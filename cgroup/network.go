package cgroup

import (
	"fmt"
	"strconv"

	"crun-go/spec"
)

// applyNetwork writes net_cls.classid and net_prio.ifpriomap. The network
// controllers only exist on the v1 hierarchy; a spec carrying a network
// block on v2 is a configuration error, not a silent no-op.
func applyNetwork(path string, net *spec.LinuxNetwork, mode spec.CgroupMode) error {
	if net == nil {
		return nil
	}
	if mode == spec.ModeUnified {
		return errConfig("network.apply", "network class_id/priorities are not supported on cgroup v2")
	}

	if net.ClassID != nil && *net.ClassID != 0 {
		dir := subsystemDir(mode, path, "net_cls")
		if err := writeFile(dir, "net_cls.classid", strconv.FormatUint(uint64(*net.ClassID), 10)); err != nil {
			return err
		}
	}

	if len(net.Priorities) > 0 {
		dir := subsystemDir(mode, path, "net_prio")
		for _, p := range net.Priorities {
			line := fmt.Sprintf("%s %d", p.Name, p.Priority)
			if err := writeFile(dir, "net_prio.ifpriomap", line); err != nil {
				return err
			}
		}
	}

	return nil
}
