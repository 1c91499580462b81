package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/tether/internal/supervise"
)

func newRunCmd(ctx *context) *cobra.Command {
	var (
		tty      bool
		envPairs []string
		envFile  string
		workdir  string
	)

	cmd := &cobra.Command{
		Use:   "run [flags] -- <target> [args...]",
		Short: "Run a single command bound to this process's lifetime",
		Long: `Run starts the target through the tether launcher, so the target is
killed by the kernel if tetherctl dies. Stdio is passed through and the
exit code mirrors the target's own.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, err := ctx.supervisor()
			if err != nil {
				return err
			}

			env, err := assembleEnv(envFile, envPairs)
			if err != nil {
				return err
			}

			spec := supervise.Spec{
				Name:    filepath.Base(args[0]),
				Command: args,
				Env:     env,
				Workdir: workdir,
			}
			proc, err := sup.Command(cmd.Context(), spec)
			if err != nil {
				return err
			}

			if tty {
				err = runInTTY(proc)
			} else {
				proc.Stdin = os.Stdin
				proc.Stdout = os.Stdout
				proc.Stderr = os.Stderr
				err = proc.Run()
			}
			if err != nil {
				if code := supervise.ExitCode(err); code > 0 {
					return &exitCodeError{code: code}
				}
				return fmt.Errorf("run %s: %w", args[0], err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&tty, "tty", "t", false, "Allocate a pseudo-terminal for the target")
	cmd.Flags().StringArrayVarP(&envPairs, "env", "e", nil, "Additional environment entries (KEY=VALUE)")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load environment entries from a dotenv file")
	cmd.Flags().StringVarP(&workdir, "workdir", "w", "", "Working directory for the target")

	return cmd
}

func assembleEnv(envFile string, pairs []string) (map[string]string, error) {
	var env map[string]string
	if envFile != "" {
		fileEnv, err := godotenv.Read(envFile)
		if err != nil {
			return nil, fmt.Errorf("read env file: %w", err)
		}
		env = fileEnv
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid env entry %q, expected KEY=VALUE", pair)
		}
		if env == nil {
			env = make(map[string]string, len(pairs))
		}
		env[key] = value
	}
	return env, nil
}
