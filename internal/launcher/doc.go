// Package launcher implements a parent-death-bound exec shim.
//
// The launcher arranges for the kernel to deliver SIGKILL to the current
// process when its parent exits, then replaces itself with the requested
// target program. Because PR_SET_PDEATHSIG survives execve, the target
// inherits the binding: if the process that started the launcher dies for
// any reason, the kernel kills the target, with no supervisor involved.
//
// Performing the prctl call in a dedicated single-threaded binary, rather
// than between fork and exec inside the host, is the point of this package.
// A multi-threaded host cannot safely run setup code in a forked child:
// any lock held by another thread at fork time stays held forever in the
// child. The host only ever spawns this binary, which registers and execs
// without touching the host's runtime state.
//
// The binding is not transitive. Children spawned by the target are
// ordinary processes; each one needs its own registration if its lifetime
// should also track a parent.
package launcher
