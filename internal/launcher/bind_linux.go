//go:build linux

package launcher

import "golang.org/x/sys/unix"

// bindParentDeathSignal asks the kernel to SIGKILL this process the
// moment its parent exits. The disposition survives execve, so the
// target program stays bound after the image replacement.
func bindParentDeathSignal() error {
	return unix.Prctl(unix.PR_SET_PDEATHSIG, uintptr(unix.SIGKILL), 0, 0, 0)
}
