package cli

import (
	stdcontext "context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/tether/internal/supervise"
)

// NewRootCmd builds the tetherctl command tree.
func NewRootCmd() *cobra.Command {
	var launcherPath string

	root := &cobra.Command{
		Use:   "tetherctl",
		Short: "Launch workers whose lifetime is bound to this process",
	}

	root.PersistentFlags().StringVar(&launcherPath, "launcher", "", "Path to the tether launcher binary (default: sibling of this executable, then PATH)")

	ctx := &context{launcherPath: &launcherPath}
	root.AddCommand(newRunCmd(ctx))
	root.AddCommand(newUpCmd(ctx))
	root.AddCommand(newLauncherPathCmd(ctx))

	root.SilenceUsage = true
	root.SilenceErrors = true

	return root
}

// Execute runs the CLI entrypoint.
func Execute() {
	ctx, stop := signal.NotifyContext(stdcontext.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	root.SetContext(ctx)

	if err := root.ExecuteContext(ctx); err != nil {
		var exitErr *exitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type context struct {
	launcherPath *string
}

func (c *context) supervisor() (*supervise.Supervisor, error) {
	return supervise.New(supervise.WithLauncherPath(*c.launcherPath))
}

// exitCodeError propagates a worker's exact exit code through cobra
// without printing an extra message.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
