package cgroup

import "os"

// defaultRootlessCheck reports whether the runtime is running unprivileged.
// Device-cgroup writes routinely fail under rootless delegation even when
// every other controller is writable, so the devices writer treats an
// all-allow rule set as best-effort there.
func defaultRootlessCheck() bool {
	return os.Geteuid() != 0
}
