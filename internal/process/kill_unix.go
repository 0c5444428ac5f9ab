//go:build !windows

package process

import (
	"errors"
	"os/exec"
	"syscall"
)

// Isolate starts cmd in its own process group and makes context
// cancellation kill the whole group, so interpreter children die with it.
func Isolate(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return KillProcessGroup(cmd.Process.Pid)
	}
}

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID). A group that already exited is not
// an error.
func KillProcessGroup(pid int) error {
	if pid <= 0 {
		return ErrInvalidPID
	}
	err := syscall.Kill(-pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}
