//go:build windows

// Package process terminates browser processes the launcher left behind.
package process

import (
	"os/exec"
	"strconv"
)

// KillProcessGroup kills pid and its child tree with taskkill (/T).
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best-effort: the launcher's own Kill runs afterwards.
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
