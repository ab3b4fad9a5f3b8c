package container

import (
	"os"
	"os/exec"
	"testing"

	"crun-go/status"
)

func newTestStore(t *testing.T) *status.Store {
	t.Helper()
	store, err := status.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

// startWorker starts a child process to stand in for a container's worker,
// so that a forced Delete sends SIGKILL to it rather than to the test
// binary. The child is reaped when the test ends.
func startWorker(t *testing.T) int {
	t.Helper()
	cmd := exec.Command("sleep", "60")
	if err := cmd.Start(); err != nil {
		t.Fatalf("start worker: %v", err)
	}
	t.Cleanup(func() {
		cmd.Process.Kill()
		cmd.Wait()
	})
	return cmd.Process.Pid
}

func TestValidateContainerID(t *testing.T) {
	cases := []struct {
		id      string
		wantErr bool
	}{
		{"abc", false},
		{"abc-123_def.ghi", false},
		{"", true},
		{"../escape", true},
		{"has/slash", true},
		{"-leading-dash", true},
	}
	for _, c := range cases {
		err := ValidateContainerID(c.id)
		if (err != nil) != c.wantErr {
			t.Errorf("ValidateContainerID(%q) error = %v, wantErr %v", c.id, err, c.wantErr)
		}
	}
}

func TestContainerCreateStartStateDelete(t *testing.T) {
	store := newTestStore(t)

	c, err := New(store, "c1", "/bundle", "/rootfs", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	worker := startWorker(t)
	if err := c.Create(worker, nil, false); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !status.HasReadExecFifo(store.StateDir("c1")) {
		t.Fatalf("expected exec fifo to exist after Create")
	}

	cs, running, err := c.State()
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if !running {
		t.Fatalf("expected container to be running (pid is a live child process)")
	}
	if cs.Pid != worker {
		t.Fatalf("Pid = %d, want %d", cs.Pid, worker)
	}
	if cs.Bundle != "/bundle" || cs.Rootfs != "/rootfs" {
		t.Fatalf("unexpected bundle/rootfs: %+v", cs)
	}

	done := make(chan error, 1)
	go func() {
		_, err := os.OpenFile(store.StateDir("c1")+"/exec.fifo", os.O_RDONLY, 0)
		done <- err
	}()

	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("background fifo reader: %v", err)
	}

	if err := c.Delete(true); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, _, err := c.State(); err == nil {
		t.Fatalf("expected State to fail after Delete")
	}
}

func TestContainerCreateDuplicateFails(t *testing.T) {
	store := newTestStore(t)

	c, err := New(store, "dup", "", "", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Create(os.Getpid(), nil, false); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if err := c.Create(os.Getpid(), nil, false); err == nil {
		t.Fatalf("expected second Create to fail")
	}
}

func TestContainerDeleteRunningWithoutForceFails(t *testing.T) {
	store := newTestStore(t)

	c, err := New(store, "running", "", "", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Create(startWorker(t), nil, false); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := c.Delete(false); err == nil {
		t.Fatalf("expected Delete without force to fail while running")
	}
	if err := c.Delete(true); err != nil {
		t.Fatalf("Delete with force: %v", err)
	}
}

func TestInspectNonexistentContainer(t *testing.T) {
	store := newTestStore(t)
	if _, _, err := Inspect(store, "nope"); err == nil {
		t.Fatalf("expected Inspect to fail for nonexistent container")
	}
}

func TestListEnumeratesCreatedContainers(t *testing.T) {
	store := newTestStore(t)

	for _, id := range []string{"a", "b", "c"} {
		c, err := New(store, id, "", "", "")
		if err != nil {
			t.Fatalf("New(%s): %v", id, err)
		}
		if err := c.Create(os.Getpid(), nil, false); err != nil {
			t.Fatalf("Create(%s): %v", id, err)
		}
	}

	entries, err := List(store)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("List returned %d entries, want 3", len(entries))
	}
	for _, e := range entries {
		if !e.Running {
			t.Errorf("entry %s expected Running=true", e.ID)
		}
	}
}
