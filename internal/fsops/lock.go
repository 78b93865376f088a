package fsops

import (
	"fmt"
	"os"
	"syscall"
)

// Lock acquires an exclusive advisory lock (LOCK_EX) on the given path,
// creating the file if needed. It returns an unlock function that must be
// called to release the lock. The lock is advisory: it serializes
// cooperating engine invocations around the registry read-modify-write
// window but does not stop unrelated writers.
func Lock(path string) (unlock func() error, err error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("acquiring file lock: %w", err)
	}

	return func() error {
		defer f.Close()
		return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	}, nil
}
