package fsops

import (
	"path/filepath"
	"testing"
)

func TestLock_AcquireAndRelease(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.lock")

	release, err := Lock(path)
	if err != nil {
		t.Fatalf("unexpected error acquiring lock: %v", err)
	}
	if err := release(); err != nil {
		t.Fatalf("unexpected error releasing lock: %v", err)
	}

	// Reacquirable after release.
	release, err = Lock(path)
	if err != nil {
		t.Fatalf("unexpected error reacquiring lock: %v", err)
	}
	if err := release(); err != nil {
		t.Fatalf("unexpected error releasing reacquired lock: %v", err)
	}
}

func TestLock_MissingParentDirFails(t *testing.T) {
	dir := t.TempDir()
	if _, err := Lock(filepath.Join(dir, "no-such-dir", "registry.lock")); err == nil {
		t.Fatal("expected error when the lock's directory does not exist")
	}
}
