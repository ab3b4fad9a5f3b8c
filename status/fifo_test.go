package status

import (
	"path/filepath"
	"testing"
	"time"
)

func TestExecFifoCreateWriteRead(t *testing.T) {
	dir := t.TempDir()

	rd, err := CreateExecFifo(dir)
	if err != nil {
		t.Fatalf("CreateExecFifo: %v", err)
	}
	defer rd.Close()

	if !HasReadExecFifo(dir) {
		t.Fatal("HasReadExecFifo = false immediately after create, want true")
	}

	done := make(chan error, 1)
	go func() {
		buf := make([]byte, 1)
		_, err := rd.Read(buf)
		done <- err
	}()

	if err := WriteExecFifo(dir); err != nil {
		t.Fatalf("WriteExecFifo: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("reader: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("reader never unblocked after WriteExecFifo")
	}

	if HasReadExecFifo(dir) {
		t.Error("HasReadExecFifo = true after WriteExecFifo, want false (node unlinked)")
	}
}

func TestCreateExecFifoAlreadyExists(t *testing.T) {
	dir := t.TempDir()

	rd, err := CreateExecFifo(dir)
	if err != nil {
		t.Fatalf("CreateExecFifo: %v", err)
	}
	defer rd.Close()

	if _, err := CreateExecFifo(dir); err == nil {
		t.Fatal("expected error creating exec fifo a second time")
	}
}

func TestHasReadExecFifoMissing(t *testing.T) {
	dir := t.TempDir()
	if HasReadExecFifo(dir) {
		t.Error("HasReadExecFifo on empty dir = true, want false")
	}
	_ = filepath.Join(dir, execFifoName)
}
