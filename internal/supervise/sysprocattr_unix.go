//go:build !windows

package supervise

import (
	"os/exec"
	"syscall"
)

// configureCmdSysProcAttr puts the worker in its own process group so a
// terminal ^C aimed at the host does not reach it, and so Stop can
// signal the whole group.
func configureCmdSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
