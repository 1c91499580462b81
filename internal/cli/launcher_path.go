package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLauncherPathCmd(ctx *context) *cobra.Command {
	return &cobra.Command{
		Use:   "launcher-path",
		Short: "Print the resolved tether launcher binary path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, err := ctx.supervisor()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sup.LauncherPath())
			return nil
		},
	}
}
