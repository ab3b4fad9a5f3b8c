package status

import (
	"encoding/json"
	"testing"

	cerrors "crun-go/errors"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	cs := &ContainerStatus{
		Pid:              4242,
		ProcessStartTime: 998877,
		CgroupPath:       "/sys/fs/cgroup/mycontainer",
		Rootfs:           "/var/lib/containers/mycontainer/rootfs",
		Bundle:           "/var/lib/containers/mycontainer",
		Created:          "2026-01-01T00:00:00Z",
		SystemdCgroup:    true,
		Detached:         true,
	}

	data, err := Marshal(cs)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if *got != *cs {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, cs)
	}
}

func TestMarshalFieldNames(t *testing.T) {
	cs := &ContainerStatus{Pid: 1, CgroupPath: "/x", Rootfs: "/r", Bundle: "/b", Created: "now"}
	data, err := Marshal(cs)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	for _, key := range []string{"pid", "process-start-time", "cgroup-path", "rootfs", "systemd-cgroup", "bundle", "created", "detached"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("expected key %q in marshaled document", key)
		}
	}
}

func TestUnmarshalMissingRequiredField(t *testing.T) {
	_, err := Unmarshal([]byte(`{"pid":1,"rootfs":"/r","bundle":"/b","created":"now"}`))
	if !cerrors.IsKind(err, cerrors.ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
}

func TestUnmarshalProcessStartTimeDefaultsToZero(t *testing.T) {
	cs, err := Unmarshal([]byte(`{"pid":1,"cgroup-path":"/x","rootfs":"/r","bundle":"/b","created":"now"}`))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if cs.ProcessStartTime != 0 {
		t.Errorf("ProcessStartTime = %d, want 0", cs.ProcessStartTime)
	}
}
