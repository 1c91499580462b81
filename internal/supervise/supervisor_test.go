package supervise

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	stdruntime "runtime"
	"testing"
	"time"
)

// writeFakeLauncher drops a stand-in launcher that just execs its
// arguments, mimicking the real binary's successful path.
func writeFakeLauncher(t *testing.T) string {
	t.Helper()
	if stdruntime.GOOS == "windows" {
		t.Skip("supervise tests skipped on windows")
	}
	path := filepath.Join(t.TempDir(), LauncherName)
	script := "#!/bin/sh\nexec \"$@\"\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake launcher: %v", err)
	}
	return path
}

func newTestSupervisor(t *testing.T) *Supervisor {
	t.Helper()
	sup, err := New(WithLauncherPath(writeFakeLauncher(t)))
	if err != nil {
		t.Fatalf("new supervisor: %v", err)
	}
	return sup
}

func TestCommandPrependsLauncher(t *testing.T) {
	sup := newTestSupervisor(t)

	cmd, err := sup.Command(context.Background(), Spec{
		Name:    "app",
		Command: []string{"/bin/sh", "-c", "true"},
		Env:     map[string]string{"WORKER_MODE": "test"},
	})
	if err != nil {
		t.Fatalf("command: %v", err)
	}

	if cmd.Path != sup.LauncherPath() {
		t.Fatalf("expected launcher %s as path, got %s", sup.LauncherPath(), cmd.Path)
	}
	if len(cmd.Args) != 4 || cmd.Args[1] != "/bin/sh" || cmd.Args[2] != "-c" || cmd.Args[3] != "true" {
		t.Fatalf("expected target command after launcher, got %v", cmd.Args)
	}

	var found bool
	for _, entry := range cmd.Env {
		if entry == "WORKER_MODE=test" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected env override in %d entries", len(cmd.Env))
	}
}

func TestCommandRequiresTarget(t *testing.T) {
	sup := newTestSupervisor(t)

	if _, err := sup.Command(context.Background(), Spec{Name: "empty"}); err == nil {
		t.Fatal("expected error for empty command")
	}
}

func TestStartStreamsOutput(t *testing.T) {
	sup := newTestSupervisor(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	worker, err := sup.Start(ctx, Spec{
		Name:    "echoer",
		Command: []string{"/bin/sh", "-c", "echo from-stdout; echo from-stderr 1>&2"},
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	var sawStdout, sawStderr bool
	for evt := range worker.Events() {
		switch {
		case evt.Source == LogSourceStdout && evt.Message == "from-stdout":
			sawStdout = true
		case evt.Source == LogSourceStderr && evt.Message == "from-stderr":
			sawStderr = true
			if evt.Level != "warn" {
				t.Fatalf("expected warn level on stderr event, got %q", evt.Level)
			}
		}
		if evt.Worker != "echoer" {
			t.Fatalf("expected worker name on event, got %q", evt.Worker)
		}
	}
	if !sawStdout || !sawStderr {
		t.Fatalf("missing output: stdout=%v stderr=%v", sawStdout, sawStderr)
	}

	if err := worker.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestWaitReturnsExitError(t *testing.T) {
	sup := newTestSupervisor(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	worker, err := sup.Start(ctx, Spec{
		Name:    "failing",
		Command: []string{"/bin/sh", "-c", "exit 3"},
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	err = worker.Wait(ctx)
	if err == nil {
		t.Fatal("expected exit error")
	}
	if code := ExitCode(err); code != 3 {
		t.Fatalf("expected exit code 3, got %d (%v)", code, err)
	}
}

func TestStopTerminatesWorker(t *testing.T) {
	sup := newTestSupervisor(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	worker, err := sup.Start(ctx, Spec{
		Name:    "sleeper",
		Command: []string{"/bin/sh", "-c", "sleep 30"},
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := worker.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	if err := worker.Wait(waitCtx); err == nil {
		t.Fatal("expected a signal-exit error after stop")
	} else if errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("worker still running after stop")
	}
}

func TestTerminatedByStop(t *testing.T) {
	sup := newTestSupervisor(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sleeper, err := sup.Start(ctx, Spec{
		Name:    "sleeper",
		Command: []string{"/bin/sh", "-c", "sleep 30"},
	})
	if err != nil {
		t.Fatalf("start sleeper: %v", err)
	}
	if err := sleeper.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := sleeper.Wait(ctx); !TerminatedByStop(err) {
		t.Fatalf("expected stop signal exit to be recognized, got %v", err)
	}

	failing, err := sup.Start(ctx, Spec{
		Name:    "failing",
		Command: []string{"/bin/sh", "-c", "exit 2"},
	})
	if err != nil {
		t.Fatalf("start failing: %v", err)
	}
	if err := failing.Wait(ctx); TerminatedByStop(err) {
		t.Fatalf("plain non-zero exit must not count as stopped: %v", err)
	}

	if TerminatedByStop(nil) {
		t.Fatal("nil error must not count as stopped")
	}
	if TerminatedByStop(errors.New("plain failure")) {
		t.Fatal("non-exit error must not count as stopped")
	}
}

func TestExitCode(t *testing.T) {
	if code := ExitCode(nil); code != 0 {
		t.Fatalf("expected 0 for nil error, got %d", code)
	}
	if code := ExitCode(errors.New("plain failure")); code != -1 {
		t.Fatalf("expected -1 for non-exit error, got %d", code)
	}
}

func TestResolveLauncherExplicitPath(t *testing.T) {
	path := writeFakeLauncher(t)

	resolved, err := ResolveLauncher(path)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved != path {
		t.Fatalf("expected %s, got %s", path, resolved)
	}
}

func TestResolveLauncherRejectsMissingPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope", "tether")
	if _, err := ResolveLauncher(missing); err == nil {
		t.Fatal("expected error for missing launcher path")
	}
}

func TestResolveLauncherSearchesPath(t *testing.T) {
	path := writeFakeLauncher(t)
	t.Setenv("PATH", filepath.Dir(path))

	resolved, err := ResolveLauncher("")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if filepath.Base(resolved) != LauncherName {
		t.Fatalf("expected a %s binary, got %s", LauncherName, resolved)
	}
}
