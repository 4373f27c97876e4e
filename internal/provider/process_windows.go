//go:build windows

package provider

import (
	"os/exec"
	"syscall"
)

// configureProcess starts cmd in a new process group. Windows has no group
// kill, so stray children are left to WaitDelay.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
	cmd.Cancel = func() error {
		return cmd.Process.Kill()
	}
}
