//go:build !windows

package provider

import (
	"os/exec"
	"syscall"
)

// configureProcess runs cmd in its own process group so a timeout or cancel
// kills the whole tree, including children of a shell-wrapped command.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		// Negative pid targets the group.
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
