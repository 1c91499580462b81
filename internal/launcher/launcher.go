package launcher

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// ErrUsage reports an invocation without a target command.
var ErrUsage = errors.New("a target command is required")

// ErrParentExited reports that the parent process died before the death
// signal was armed. The kernel only fires PR_SET_PDEATHSIG on a future
// parent exit, so a target launched now would run unbound.
var ErrParentExited = errors.New("parent exited before launch")

// RegistrationError reports that the kernel rejected the death-signal
// registration, or that the facility does not exist on this platform.
type RegistrationError struct {
	Err error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register parent death signal: %v", e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// ExecError reports that the target could not be resolved or executed.
type ExecError struct {
	Path string
	Err  error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("exec %s: %v", e.Path, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// Launcher binds the calling process to its parent's lifetime and then
// replaces it with a target program. Run never returns on success.
type Launcher struct {
	bind     func() error
	getppid  func() int
	lookPath func(file string) (string, error)
	exec     func(path string, argv []string, env []string) error
}

// New constructs a launcher backed by the real kernel facilities.
func New() *Launcher {
	return &Launcher{
		bind:     bindParentDeathSignal,
		getppid:  os.Getppid,
		lookPath: exec.LookPath,
		exec:     replaceImage,
	}
}

// Run registers the death signal and execs argv[0] with the remaining
// arguments. The registration strictly precedes the exec; if any step
// fails the target is never started. argv[0] is resolved against PATH
// unless it contains a path separator.
func (l *Launcher) Run(argv []string) error {
	if len(argv) == 0 {
		return ErrUsage
	}

	if err := l.bind(); err != nil {
		return &RegistrationError{Err: err}
	}

	// The parent may have died between our creation and the prctl call,
	// in which case the signal will never fire. Re-parenting to the init
	// reaper is the observable symptom.
	if l.getppid() == 1 {
		return ErrParentExited
	}

	path, err := l.lookPath(argv[0])
	if err != nil {
		return &ExecError{Path: argv[0], Err: err}
	}

	if err := l.exec(path, argv, os.Environ()); err != nil {
		return &ExecError{Path: path, Err: err}
	}
	return nil
}
