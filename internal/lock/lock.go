// Package lock implements the single-instance file lock that keeps two
// cctakt processes from supervising the same workspace at once.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/cctakt/cctakt/internal/core"
)

// FileName is the lock file's path relative to the workspace root.
const FileName = ".cctakt/lock"

// File holds an acquired lock. Release deletes the backing file; it is
// safe to call Release more than once.
type File struct {
	path     string
	released bool
}

// Acquire ensures the lock directory exists, probes any existing lock
// holder for liveness, removes it if stale, and writes the current
// process id. It returns a *core.DomainError with code
// core.CodeLockAcquireFailed (carrying the holder's pid in Details) when
// another live instance holds the lock.
func Acquire(workspaceRoot string) (*File, error) {
	lockPath := filepath.Join(workspaceRoot, FileName)

	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, core.ErrExecution("LOCK_DIR_FAILED", "failed to create lock directory: "+err.Error())
	}

	if _, err := os.Stat(lockPath); err == nil {
		existingPID, readErr := readPID(lockPath)
		if readErr != nil {
			return nil, readErr
		}

		if isProcessAlive(existingPID) {
			return nil, core.ErrState(core.CodeLockAcquireFailed,
				fmt.Sprintf("another cctakt instance is already running in this workspace (pid %d)", existingPID)).
				WithDetail("pid", existingPID)
		}

		if err := os.Remove(lockPath); err != nil {
			return nil, core.ErrExecution("LOCK_STALE_REMOVE_FAILED", "failed to remove stale lock file: "+err.Error())
		}
	}

	pid := os.Getpid()
	if err := os.WriteFile(lockPath, []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return nil, core.ErrExecution("LOCK_WRITE_FAILED", "failed to create lock file: "+err.Error())
	}

	return &File{path: lockPath}, nil
}

func readPID(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, core.ErrExecution("LOCK_READ_FAILED", "failed to read lock file: "+err.Error())
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return 0, core.ErrValidation("LOCK_PID_INVALID", "lock file contains an invalid pid: "+strings.TrimSpace(string(content)))
	}
	return pid, nil
}

// isProcessAlive probes liveness per-OS: /proc/<pid> on Linux, `kill -0` on
// macOS/BSD, and assume-alive (safe default, never overwrite) elsewhere.
func isProcessAlive(pid int) bool {
	switch runtime.GOOS {
	case "linux":
		_, err := os.Stat(fmt.Sprintf("/proc/%d", pid))
		return err == nil
	case "darwin", "freebsd", "netbsd", "openbsd":
		return killDashZero(pid)
	default:
		return true
	}
}

// Release deletes the lock file. Safe to call multiple times, mirroring
// the original's Drop-based release on every exit path.
func (f *File) Release() {
	if f == nil || f.released {
		return
	}
	f.released = true
	if _, err := os.Stat(f.path); err == nil {
		if err := os.Remove(f.path); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to remove lock file: %v\n", err)
		}
	}
}
