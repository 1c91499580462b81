package cli

import (
	stdcontext "context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Paintersrp/tether/internal/cliutil"
	"github.com/Paintersrp/tether/internal/logmux"
	"github.com/Paintersrp/tether/internal/manifest"
	"github.com/Paintersrp/tether/internal/supervise"
)

const stopTimeout = 10 * time.Second

func newUpCmd(ctx *context) *cobra.Command {
	var (
		file        string
		jsonOut     bool
		redact      bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Start every manifest worker bound to this process",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := manifest.Load(file)
			if err != nil {
				return err
			}
			sup, err := ctx.supervisor()
			if err != nil {
				return err
			}

			runCtx := cmd.Context()
			mux := logmux.New(256)
			var workers []*supervise.Worker

			stopAll := func() {
				stopCtx, cancel := stdcontext.WithTimeout(stdcontext.Background(), stopTimeout)
				defer cancel()
				var wg sync.WaitGroup
				for _, w := range workers {
					wg.Add(1)
					go func(w *supervise.Worker) {
						defer wg.Done()
						if err := w.Stop(stopCtx); err != nil {
							fmt.Fprintf(cmd.ErrOrStderr(), "stop worker %s: %v\n", w.Name(), err)
						}
					}(w)
				}
				wg.Wait()
			}

			for _, name := range doc.WorkersSorted() {
				spec := doc.Workers[name]
				worker, err := sup.Start(runCtx, supervise.Spec{
					Name:    name,
					Command: spec.Command,
					Env:     spec.Env,
					Workdir: spec.Workdir,
				})
				if err != nil {
					stopAll()
					return err
				}
				workers = append(workers, worker)
				mux.Add(worker.Events())
				fmt.Fprintf(cmd.OutOrStdout(), "Started worker %s (pid %d)\n", name, worker.PID())
			}
			go mux.Close()

			if metricsAddr != "" {
				shutdown, err := serveMetrics(metricsAddr)
				if err != nil {
					stopAll()
					return err
				}
				defer shutdown()
				fmt.Fprintf(cmd.OutOrStdout(), "Metrics listening on %s\n", metricsAddr)
			}

			go func() {
				<-runCtx.Done()
				stopAll()
			}()

			renderEvents(cmd, mux.Output(), jsonOut, redact)

			var failed bool
			for _, w := range workers {
				err := w.Wait(stdcontext.Background())
				if err == nil {
					continue
				}
				// Only exits forced by our own stop signals count as
				// shutdown; a worker that failed on its own before the
				// shutdown still gets reported.
				if runCtx.Err() != nil && supervise.TerminatedByStop(err) {
					continue
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
				failed = true
			}
			if failed {
				return errors.New("one or more workers failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "tether.yaml", "Path to worker manifest")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit worker logs as JSON records")
	cmd.Flags().BoolVar(&redact, "redact", false, "Mask known secret patterns in worker logs")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	return cmd
}

func renderEvents(cmd *cobra.Command, events <-chan supervise.Event, jsonOut, redact bool) {
	if jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		for evt := range events {
			if redact {
				evt.Message = cliutil.RedactSecrets(evt.Message)
			}
			cliutil.EncodeLogEvent(enc, cmd.ErrOrStderr(), evt)
		}
		return
	}

	colorize := false
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		colorize = term.IsTerminal(int(f.Fd()))
	}
	formatter := cliutil.NewHumanFormatter(colorize, redact)
	for evt := range events {
		fmt.Fprintln(cmd.OutOrStdout(), formatter.Format(evt))
	}
}
