package status

import (
	"os"
	"path/filepath"
	"testing"

	cerrors "crun-go/errors"
)

func TestStoreCreateWriteReadDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewStore(root)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	const id = "mycontainer"
	if err := store.Create(id); err != nil {
		t.Fatalf("Create: %v", err)
	}

	cs := &ContainerStatus{
		Pid:        os.Getpid(),
		CgroupPath: "/sys/fs/cgroup/" + id,
		Rootfs:     "/var/lib/containers/" + id + "/rootfs",
		Bundle:     "/var/lib/containers/" + id,
		Created:    "2026-01-01T00:00:00Z",
	}
	if err := store.Write(id, cs); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, id, statusFileName+".tmp")); !os.IsNotExist(err) {
		t.Error("temp file left behind after Write")
	}

	got, err := store.Read(id)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Pid != cs.Pid || got.CgroupPath != cs.CgroupPath {
		t.Errorf("Read = %+v, want matching %+v", got, cs)
	}
	if got.ProcessStartTime == 0 {
		t.Error("ProcessStartTime was not captured on Write")
	}

	ids, err := store.Enumerate()
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(ids) != 1 || ids[0] != id {
		t.Errorf("Enumerate = %v, want [%q]", ids, id)
	}

	if err := store.Delete(id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, id)); !os.IsNotExist(err) {
		t.Error("container directory still exists after Delete")
	}
}

func TestStoreReadNonexistentContainer(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	_, err = store.Read("ghost")
	if !cerrors.IsKind(err, cerrors.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestStoreEnumerateSkipsDotfilesAndIncompleteDirs(t *testing.T) {
	root := t.TempDir()
	store, err := NewStore(root)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := os.Mkdir(filepath.Join(root, ".hidden"), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, "mid-create"), 0700); err != nil {
		t.Fatal(err)
	}
	if err := store.Create("complete"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Write("complete", &ContainerStatus{
		Pid: os.Getpid(), CgroupPath: "/x", Rootfs: "/r", Bundle: "/b", Created: "now",
	}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	ids, err := store.Enumerate()
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(ids) != 1 || ids[0] != "complete" {
		t.Errorf("Enumerate = %v, want [\"complete\"]", ids)
	}
}

// Invariant 5 — any id containing '/' fails ConfigInvalid at every entry
// point.
func TestStoreRejectsIDWithSlash(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	const bad = "evil/../escape"
	checks := map[string]error{
		"Create": store.Create(bad),
		"Write": store.Write(bad, &ContainerStatus{
			Pid: os.Getpid(), CgroupPath: "/x", Rootfs: "/r", Bundle: "/b", Created: "now",
		}),
	}
	for name, err := range checks {
		if !cerrors.IsKind(err, cerrors.ErrInvalidConfig) {
			t.Errorf("%s(%q) err = %v, want ErrInvalidConfig", name, bad, err)
		}
	}
	if _, err := store.Read(bad); !cerrors.IsKind(err, cerrors.ErrInvalidConfig) {
		t.Errorf("Read(%q) err = %v, want ErrInvalidConfig", bad, err)
	}
	if err := store.Delete(bad); !cerrors.IsKind(err, cerrors.ErrInvalidConfig) {
		t.Errorf("Delete(%q) err = %v, want ErrInvalidConfig", bad, err)
	}
}

func TestStoreDefaultRootUsesXDGRuntimeDir(t *testing.T) {
	old, had := os.LookupEnv("XDG_RUNTIME_DIR")
	defer func() {
		if had {
			os.Setenv("XDG_RUNTIME_DIR", old)
		} else {
			os.Unsetenv("XDG_RUNTIME_DIR")
		}
	}()

	os.Setenv("XDG_RUNTIME_DIR", "/tmp/xdg-example")
	if got, want := defaultRoot(), filepath.Join("/tmp/xdg-example", "crun"); got != want {
		t.Errorf("defaultRoot() = %q, want %q", got, want)
	}

	os.Unsetenv("XDG_RUNTIME_DIR")
	if got, want := defaultRoot(), "/run/crun"; got != want {
		t.Errorf("defaultRoot() = %q, want %q", got, want)
	}
}
