//go:build windows

package transcode

import (
	"os/exec"
	"syscall"
)

func newProcessGroupAttr() *syscall.SysProcAttr {
	return nil
}

func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}
