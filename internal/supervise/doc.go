// Package supervise starts worker processes through the tether launcher
// so that every worker's lifetime is bound to the host process.
//
// The supervisor never arms the death signal itself. It resolves the
// launcher binary once and prepends it to each worker's command line;
// the launcher performs the registration in its own single-threaded
// process before handing the image over to the worker. The supervisor's
// own job is the ordinary host-side plumbing: environment assembly,
// stdout/stderr streaming, waiting, and graceful shutdown of the
// worker's process group.
//
// The binding covers direct workers only. Processes a worker spawns on
// its own are outside the guarantee and outside this package's reach.
package supervise
