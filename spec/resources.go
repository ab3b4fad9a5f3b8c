// Package spec defines the data model consumed by the resource applier and
// the status store. Resource shapes are the upstream OCI runtime-spec types;
// this package only adds the runtime-local pieces the spec doesn't carry
// (cgroup mode, default device table).
package spec

import (
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// ResourceSpec is the resolved set of cgroup resource limits for a container.
// It is immutable for the duration of an Apply call.
type ResourceSpec = specs.LinuxResources

// Memory, CPU, Pids, BlockIO, Network and Devices sub-blocks, re-exported so
// callers of this package don't need to import runtime-spec directly.
type (
	LinuxMemory             = specs.LinuxMemory
	LinuxCPU                = specs.LinuxCPU
	LinuxPids               = specs.LinuxPids
	LinuxBlockIO            = specs.LinuxBlockIO
	LinuxWeightDevice       = specs.LinuxWeightDevice
	LinuxThrottleDevice     = specs.LinuxThrottleDevice
	LinuxHugepageLimit      = specs.LinuxHugepageLimit
	LinuxNetwork            = specs.LinuxNetwork
	LinuxInterfacePriority  = specs.LinuxInterfacePriority
	LinuxDeviceCgroup       = specs.LinuxDeviceCgroup
	LinuxRdma               = specs.LinuxRdma
)

// CgroupMode identifies which cgroup hierarchy layout a path belongs to.
type CgroupMode int

const (
	// ModeLegacy is the pure cgroup v1 hierarchy (each controller its own subtree).
	ModeLegacy CgroupMode = iota
	// ModeHybrid is cgroup v1 controllers plus a v2 tree mounted alongside,
	// typically at /sys/fs/cgroup/unified. Resources are still written via v1.
	ModeHybrid
	// ModeUnified is the pure cgroup v2 hierarchy.
	ModeUnified
)

func (m CgroupMode) String() string {
	switch m {
	case ModeLegacy:
		return "legacy"
	case ModeHybrid:
		return "hybrid"
	case ModeUnified:
		return "unified"
	default:
		return "unknown"
	}
}

// DefaultDevice is one entry of the fixed device allowlist that is unioned
// into every device spec regardless of what the caller supplied.
type DefaultDevice struct {
	Type   string // "c" or "b"
	Major  int64  // -1 means wildcard
	Minor  int64  // -1 means wildcard
	Access string
}

// DefaultDevices is the immutable table of devices every container gets,
// in application order. It mirrors the fixed list baked into the reference
// implementation: wildcard mknod for char/block devices, then the standard
// /dev nodes, then the pts and tun ranges.
var DefaultDevices = []DefaultDevice{
	{Type: "c", Major: -1, Minor: -1, Access: "m"},
	{Type: "b", Major: -1, Minor: -1, Access: "m"},
	{Type: "c", Major: 1, Minor: 3, Access: "rwm"},   // /dev/null
	{Type: "c", Major: 1, Minor: 8, Access: "rwm"},   // /dev/random
	{Type: "c", Major: 1, Minor: 7, Access: "rwm"},   // /dev/full
	{Type: "c", Major: 5, Minor: 0, Access: "rwm"},   // /dev/tty
	{Type: "c", Major: 1, Minor: 5, Access: "rwm"},   // /dev/zero
	{Type: "c", Major: 1, Minor: 9, Access: "rwm"},   // /dev/urandom
	{Type: "c", Major: 5, Minor: 1, Access: "rwm"},   // /dev/console
	{Type: "c", Major: 136, Minor: -1, Access: "rwm"}, // /dev/pts/*
	{Type: "c", Major: 5, Minor: 2, Access: "rwm"},   // /dev/ptmx
	{Type: "c", Major: 10, Minor: 200, Access: "rwm"}, // /dev/net/tun
}

// WithDefaultDevices returns the caller-supplied device rules followed by
// the default device allowlist, per the invariant that defaults are always
// unioned in before translation to the kernel's native format.
func WithDefaultDevices(user []LinuxDeviceCgroup) []LinuxDeviceCgroup {
	out := make([]LinuxDeviceCgroup, 0, len(user)+len(DefaultDevices))
	out = append(out, user...)
	for _, d := range DefaultDevices {
		rule := LinuxDeviceCgroup{
			Allow:  true,
			Type:   d.Type,
			Access: d.Access,
		}
		if d.Major >= 0 {
			major := d.Major
			rule.Major = &major
		}
		if d.Minor >= 0 {
			minor := d.Minor
			rule.Minor = &minor
		}
		out = append(out, rule)
	}
	return out
}
