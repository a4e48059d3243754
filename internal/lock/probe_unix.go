//go:build !windows

package lock

import (
	"os"
	"syscall"
)

// killDashZero mirrors `kill -0 <pid>`: sending signal 0 fails with ESRCH
// if no such process exists, and succeeds (or fails with EPERM, which
// still proves the process exists) otherwise.
func killDashZero(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || err == syscall.EPERM
}
