//go:build !windows

package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// runInTTY starts the command on a fresh pseudo-terminal and proxies the
// local terminal to it. The pty gives the target its own session, so the
// process-group attributes set for pipe mode are dropped first.
func runInTTY(cmd *exec.Cmd) error {
	cmd.SysProcAttr = nil

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("allocate pty: %w", err)
	}
	defer ptmx.Close()

	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	go func() {
		for range winch {
			_ = pty.InheritSize(os.Stdin, ptmx)
		}
	}()
	winch <- syscall.SIGWINCH
	defer func() {
		signal.Stop(winch)
		close(winch)
	}()

	stdinFd := int(os.Stdin.Fd())
	if term.IsTerminal(stdinFd) {
		oldState, err := term.MakeRaw(stdinFd)
		if err != nil {
			return fmt.Errorf("set raw mode: %w", err)
		}
		defer func() {
			_ = term.Restore(stdinFd, oldState)
		}()
	}

	go func() {
		_, _ = io.Copy(ptmx, os.Stdin)
	}()
	_, _ = io.Copy(os.Stdout, ptmx)

	return cmd.Wait()
}
