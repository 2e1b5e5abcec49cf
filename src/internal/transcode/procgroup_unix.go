//go:build !windows

package transcode

import (
	"os/exec"
	"syscall"
)

// newProcessGroupAttr puts the encoder in its own process group so
// killProcessGroup can take down any child processes it spawns (e.g. a
// wrapper script) along with it
func newProcessGroupAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup sends SIGKILL to the encoder's whole process group
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
