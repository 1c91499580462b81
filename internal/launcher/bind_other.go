//go:build !linux

package launcher

import (
	"errors"
	"fmt"
)

// bindParentDeathSignal fails on platforms without PR_SET_PDEATHSIG.
// Running the target without the binding would silently break the
// lifetime guarantee, so the launcher refuses instead.
func bindParentDeathSignal() error {
	return fmt.Errorf("parent death signal requires Linux: %w", errors.ErrUnsupported)
}
