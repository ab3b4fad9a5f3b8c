package cgroup

import (
	"crun-go/logging"
	"crun-go/spec"
)

// Apply translates spec into writes against the cgroup directory at path.
// If path is empty, the caller asserted no cgroup for the process; Apply
// then only succeeds if spec carries no resource limits and no device
// entry that restricts access below the full "rwm" set. Otherwise Apply
// probes the cgroup mode and dispatches to the matching applier; hybrid
// mode uses the v1 applier, since resources are still written through the
// legacy controller tree even when a v2 mount coexists.
func Apply(path string, rs *spec.ResourceSpec, needDeviceProgram bool) error {
	if path == "" {
		if hasLimits(rs) {
			return errConfig("cgroup.apply", "cannot set limits without cgroups")
		}
		return nil
	}

	mode, err := DetectMode()
	if err != nil {
		return errIO("cgroup.apply", "failed to detect cgroup mode", err)
	}
	logging.Debug("applying cgroup resources", "path", path, "mode", mode.String())

	if mode == spec.ModeUnified {
		return applyUnifiedMode(path, rs, needDeviceProgram)
	}
	return applyLegacyMode(path, rs, needDeviceProgram, mode)
}

func hasLimits(rs *spec.ResourceSpec) bool {
	if rs == nil {
		return false
	}
	if rs.Memory != nil || rs.CPU != nil || rs.Pids != nil || rs.BlockIO != nil ||
		len(rs.HugepageLimits) > 0 || rs.Network != nil || len(rs.Unified) > 0 {
		return true
	}
	for _, d := range rs.Devices {
		if d.Access != "rwm" {
			return true
		}
	}
	return false
}

func applyLegacyMode(path string, rs *spec.ResourceSpec, needDeviceProgram bool, mode spec.CgroupMode) error {
	if rs == nil {
		return nil
	}

	if err := applyMemory(path, rs.Memory, mode); err != nil {
		return err
	}
	if err := applyCPU(path, rs.CPU, mode); err != nil {
		return err
	}
	if err := applyPids(path, rs.Pids, mode); err != nil {
		return err
	}
	if err := applyBlkio(path, rs.BlockIO, mode); err != nil {
		return err
	}
	if err := applyNetwork(path, rs.Network, mode); err != nil {
		return err
	}
	if err := applyHugepages(path, rs.HugepageLimits, mode); err != nil {
		return err
	}
	if len(rs.Devices) > 0 || needDeviceProgram {
		if err := applyDevicesV1(path, rs.Devices); err != nil {
			return err
		}
	}
	return nil
}

func applyUnifiedMode(path string, rs *spec.ResourceSpec, needDeviceProgram bool) error {
	if rs == nil {
		return nil
	}

	if err := applyMemory(path, rs.Memory, spec.ModeUnified); err != nil {
		return err
	}
	if err := applyCPU(path, rs.CPU, spec.ModeUnified); err != nil {
		return err
	}
	if err := applyPids(path, rs.Pids, spec.ModeUnified); err != nil {
		return err
	}
	if err := applyBlkio(path, rs.BlockIO, spec.ModeUnified); err != nil {
		return err
	}
	if err := applyNetwork(path, rs.Network, spec.ModeUnified); err != nil {
		return err
	}
	if err := applyHugepages(path, rs.HugepageLimits, spec.ModeUnified); err != nil {
		return err
	}
	if err := applyDevicesV2(path, rs.Devices, needDeviceProgram); err != nil {
		return err
	}
	if len(rs.Unified) > 0 {
		if err := applyUnified(path, rs.Unified); err != nil {
			return err
		}
	}
	return nil
}
