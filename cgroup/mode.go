// Package cgroup translates a resolved resource spec into writes against
// the Linux cgroup filesystem, across the v1 legacy hierarchy, the v2
// unified hierarchy, and the hybrid layout where both are mounted.
package cgroup

import (
	"github.com/moby/sys/mountinfo"

	"crun-go/spec"
)

// DetectMode inspects /proc/self/mountinfo and reports which cgroup layout
// the system is running. ModeUnified means a single cgroup2 mount and
// nothing else; ModeLegacy means only cgroup v1 subsystem mounts are
// present; ModeHybrid means both a cgroup2 mount and v1 subsystem mounts
// coexist (the common systemd layout, where v1 still carries resources).
func DetectMode() (spec.CgroupMode, error) {
	mounts, err := mountinfo.GetMounts(mountinfo.FSTypeFilter("cgroup2"))
	if err != nil {
		return spec.ModeLegacy, err
	}
	hasUnified := len(mounts) > 0

	v1Mounts, err := mountinfo.GetMounts(mountinfo.FSTypeFilter("cgroup"))
	if err != nil {
		return spec.ModeLegacy, err
	}
	hasLegacy := len(v1Mounts) > 0

	switch {
	case hasUnified && hasLegacy:
		return spec.ModeHybrid, nil
	case hasUnified:
		return spec.ModeUnified, nil
	default:
		return spec.ModeLegacy, nil
	}
}
