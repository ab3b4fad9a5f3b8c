package cgroup

import (
	"fmt"

	"crun-go/spec"
)

// isRootless reports whether the running process has cgroup write access
// revoked, approximated by geteuid() != 0. A real deployment consults the
// namespace/UID-mapping collaborator; the applier only needs the yes/no
// signal to decide whether to tolerate device-rule failures.
var isRootless = defaultRootlessCheck

// applyDevicesV1 writes devices.allow / devices.deny, one line per rule.
// The wildcard all-devices entry (Type == "a") is written as the literal
// "a"; otherwise the line is "TYPE MAJ:MIN ACCESS" with "*" standing in
// for an absent major or minor.
func applyDevicesV1(path string, rules []spec.LinuxDeviceCgroup) error {
	dir := subsystemDir(spec.ModeLegacy, path, "devices")
	anyDeny := false
	for _, r := range rules {
		if !r.Allow {
			anyDeny = true
			break
		}
	}

	for _, r := range spec.WithDefaultDevices(rules) {
		line := deviceLine(r)
		file := "devices.allow"
		if !r.Allow {
			file = "devices.deny"
		}
		if err := writeFile(dir, file, line); err != nil {
			if !anyDeny && isRootless() {
				continue
			}
			return err
		}
	}
	return nil
}

func deviceLine(r spec.LinuxDeviceCgroup) string {
	if r.Type == "a" {
		return "a"
	}
	return fmt.Sprintf("%s %s:%s %s", r.Type, deviceToken(r.Major), deviceToken(r.Minor), r.Access)
}
