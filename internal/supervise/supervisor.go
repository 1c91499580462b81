package supervise

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/Paintersrp/tether/internal/metrics"
)

// Spec describes a single worker to launch.
type Spec struct {
	Name    string
	Command []string
	Env     map[string]string
	Workdir string
}

// Supervisor launches workers through a resolved launcher binary.
type Supervisor struct {
	launcherPath string
}

// Option adjusts supervisor construction.
type Option func(*config)

type config struct {
	launcherPath string
}

// WithLauncherPath overrides launcher resolution with an explicit path.
func WithLauncherPath(path string) Option {
	return func(c *config) {
		c.launcherPath = path
	}
}

// New resolves the launcher binary and returns a supervisor that uses it.
func New(opts ...Option) (*Supervisor, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	path, err := ResolveLauncher(cfg.launcherPath)
	if err != nil {
		return nil, err
	}
	return &Supervisor{launcherPath: path}, nil
}

// LauncherPath reports the launcher binary workers are started through.
func (s *Supervisor) LauncherPath() string {
	return s.launcherPath
}

// Command builds the exec.Cmd for a worker without starting it. The
// launcher binary is prepended, so the started process becomes the
// worker after registration. Callers own stdio wiring.
func (s *Supervisor) Command(ctx context.Context, spec Spec) (*exec.Cmd, error) {
	if len(spec.Command) == 0 {
		return nil, fmt.Errorf("worker %s requires a command", spec.Name)
	}

	cmd := exec.CommandContext(ctx, s.launcherPath, spec.Command...)
	if spec.Workdir != "" {
		cmd.Dir = spec.Workdir
	}

	env := os.Environ()
	if spec.Env != nil {
		overrides := make([]string, 0, len(spec.Env))
		for k, v := range spec.Env {
			overrides = append(overrides, fmt.Sprintf("%s=%s", k, v))
		}
		env = append(env, overrides...)
	}
	cmd.Env = env

	configureCmdSysProcAttr(cmd)
	return cmd, nil
}

// Start launches a worker and streams its output into an event channel.
func (s *Supervisor) Start(ctx context.Context, spec Spec) (*Worker, error) {
	cmd, err := s.Command(ctx, spec)
	if err != nil {
		return nil, err
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("worker %s stdout: %w", spec.Name, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("worker %s stderr: %w", spec.Name, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start worker %s: %w", spec.Name, err)
	}
	metrics.WorkerStarted(spec.Name)

	w := &Worker{
		name:   spec.Name,
		cmd:    cmd,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go w.streamLogs(stdout, LogSourceStdout, &wg)
	go w.streamLogs(stderr, LogSourceStderr, &wg)

	go func() {
		wg.Wait()
		w.exitErr = cmd.Wait()
		metrics.WorkerExited(spec.Name, w.exitErr)
		close(w.events)
		close(w.done)
	}()

	return w, nil
}

// Worker is a single process started through the launcher.
type Worker struct {
	name   string
	cmd    *exec.Cmd
	events chan Event

	done    chan struct{}
	exitErr error // written before done is closed
}

// Name returns the worker's configured name.
func (w *Worker) Name() string {
	return w.name
}

// PID returns the worker's process ID. The PID is the launcher's own:
// the image replacement keeps the process identity.
func (w *Worker) PID() int {
	if w.cmd.Process == nil {
		return 0
	}
	return w.cmd.Process.Pid
}

// Events exposes the worker's log stream. The channel closes once the
// worker has exited and its output is drained.
func (w *Worker) Events() <-chan Event {
	return w.events
}

// Wait blocks until the worker exits and returns its exit error, if any.
func (w *Worker) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-w.done:
	}
	if w.exitErr != nil {
		return fmt.Errorf("worker %s: %w", w.name, w.exitErr)
	}
	return nil
}

func (w *Worker) streamLogs(r io.Reader, source string, wg *sync.WaitGroup) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\n")
		evt := Event{Worker: w.name, Message: line, Source: source}
		if source == LogSourceStderr {
			evt.Level = "warn"
		}
		w.events <- evt
	}
}

// ExitCode extracts a process exit code from a Wait error. It returns 0
// for nil and -1 when the error carries no exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
