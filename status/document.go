// Package status implements crash-safe on-disk tracking of live containers:
// the per-container JSON status document, PID identity verification via
// /proc/<pid>/stat start-time, and the exec FIFO used to synchronize
// "create" with "start".
package status

import (
	"encoding/json"
	"fmt"

	cerrors "crun-go/errors"
)

// ContainerStatus is the persisted record for one container. Field names
// match the on-disk JSON exactly; this type is also the wire format, so
// renaming a field changes the document layout.
type ContainerStatus struct {
	Pid                 int    `json:"pid"`
	ProcessStartTime    uint64 `json:"process-start-time"`
	CgroupPath          string `json:"cgroup-path"`
	Scope               string `json:"scope,omitempty"`
	IntelRdt            string `json:"intelrdt,omitempty"`
	Rootfs              string `json:"rootfs"`
	SystemdCgroup       bool   `json:"systemd-cgroup"`
	Bundle              string `json:"bundle"`
	Created             string `json:"created"`
	Owner               string `json:"owner,omitempty"`
	Detached            bool   `json:"detached"`
	ExternalDescriptors string `json:"external_descriptors,omitempty"`
}

// requiredFields lists the document fields that must be present on read;
// missing any of them means the document was truncated or hand-edited.
var requiredFields = []string{"pid", "cgroup-path", "rootfs", "bundle", "created"}

// Marshal renders status as pretty-printed JSON. encoding/json always
// produces valid UTF-8 and escapes control characters, satisfying the
// write side of the document's two-way contract.
func Marshal(s *ContainerStatus) ([]byte, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, cerrors.Wrap(err, cerrors.ErrIO, "status.marshal")
	}
	return b, nil
}

// Unmarshal parses a status document and validates that every required
// field was present in the source JSON (a field present with its zero
// value is not the same as a field absent from the document).
func Unmarshal(data []byte) (*ContainerStatus, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, cerrors.Wrap(err, cerrors.ErrParse, "status.unmarshal")
	}
	for _, f := range requiredFields {
		if _, ok := raw[f]; !ok {
			return nil, cerrors.New(cerrors.ErrParse, "status.unmarshal", fmt.Sprintf("%q missing in status document", f))
		}
	}

	var s ContainerStatus
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, cerrors.Wrap(err, cerrors.ErrParse, "status.unmarshal")
	}
	return &s, nil
}
