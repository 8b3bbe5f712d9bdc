//go:build !windows

// Package process terminates browser processes the launcher left behind.
package process

import "syscall"

// KillProcessGroup sends SIGKILL to the whole process group of pid, which
// takes Chrome's renderer and GPU children down with the parent.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best-effort: the launcher's own Kill runs afterwards.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
