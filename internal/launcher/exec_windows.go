//go:build windows

package launcher

import (
	"errors"
	"fmt"
)

// replaceImage is unreachable on Windows: registration fails first. The
// stub keeps the package compiling for cross-platform tooling.
func replaceImage(path string, argv []string, env []string) error {
	return fmt.Errorf("process image replacement is not supported on windows: %w", errors.ErrUnsupported)
}
