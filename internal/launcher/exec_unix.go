//go:build !windows

package launcher

import "golang.org/x/sys/unix"

// replaceImage swaps the current process image for the target program.
// It only returns on failure.
func replaceImage(path string, argv []string, env []string) error {
	return unix.Exec(path, argv, env)
}
