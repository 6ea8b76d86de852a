// Package cli provides the single-run lock.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

const runLockName = "run.lock"

// acquireRunLock takes the advisory run lock under home, so two runs
// cannot spend from the same daily quota at once. The returned release
// func removes the lock file.
func acquireRunLock(home string) (func(), error) {
	path := filepath.Join(home, runLockName)

	if err := os.MkdirAll(home, 0755); err != nil {
		return nil, fmt.Errorf("failed to create home directory: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			fmt.Fprintf(file, "%d\n", os.Getpid())
			if closeErr := file.Close(); closeErr != nil {
				os.Remove(path)
				return nil, fmt.Errorf("failed to write lock file: %w", closeErr)
			}
			return func() { os.Remove(path) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}

		pid, readErr := readLockPID(path)
		if readErr == nil && pid > 0 && processAlive(pid) {
			return nil, &PreflightError{
				Message:  fmt.Sprintf("another run holds the lock (pid %d)", pid),
				Hint:     fmt.Sprintf("lock file: %s", path),
				NextStep: "wait for that run to finish, or remove the lock file if the process is gone",
			}
		}

		// Stale lock from a dead process.
		if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
			return nil, fmt.Errorf("failed to remove stale lock file: %w", removeErr)
		}
	}

	return nil, fmt.Errorf("failed to acquire run lock at %s", path)
}

func readLockPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// processAlive probes pid with signal 0, which delivers nothing.
func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return err == syscall.EPERM
}
