//go:build !windows

package supervise

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"
)

const stopGracePeriod = 2 * time.Second

// Stop asks the worker's process group to terminate, escalating to
// SIGKILL after a grace period. A worker that exits because of the
// signal counts as stopped, not failed.
func (w *Worker) Stop(ctx context.Context) error {
	return w.terminate(ctx, false)
}

// Kill terminates the worker's process group immediately.
func (w *Worker) Kill(ctx context.Context) error {
	return w.terminate(ctx, true)
}

func (w *Worker) terminate(ctx context.Context, force bool) error {
	if w.cmd.Process == nil {
		return nil
	}

	if !force {
		if err := syscall.Kill(-w.cmd.Process.Pid, syscall.SIGTERM); err != nil && !errors.Is(err, syscall.ESRCH) {
			return fmt.Errorf("signal worker group %s: %w", w.name, err)
		}

		select {
		case <-w.done:
			return nil
		case <-time.After(stopGracePeriod):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := syscall.Kill(-w.cmd.Process.Pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("kill worker group %s: %w", w.name, err)
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TerminatedByStop reports whether a Wait error represents an exit
// forced by Stop's termination signals. A worker that exited on its
// own with a non-zero status is a failure regardless of any shutdown
// in progress.
func TerminatedByStop(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok {
		return false
	}
	return status.Signaled() && (status.Signal() == syscall.SIGTERM || status.Signal() == syscall.SIGKILL)
}
