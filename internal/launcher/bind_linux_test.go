//go:build linux

package launcher

import (
	"testing"
	"unsafe"

	"golang.org/x/sys/unix"
)

func TestBindParentDeathSignalSetsDisposition(t *testing.T) {
	// Arming the death signal here is harmless: the test binary's parent
	// outlives it. Clear the disposition before returning regardless.
	defer func() {
		if err := unix.Prctl(unix.PR_SET_PDEATHSIG, 0, 0, 0, 0); err != nil {
			t.Fatalf("clear parent death signal: %v", err)
		}
	}()

	if err := bindParentDeathSignal(); err != nil {
		t.Fatalf("bind parent death signal: %v", err)
	}

	var sig int
	if err := unix.Prctl(unix.PR_GET_PDEATHSIG, uintptr(unsafe.Pointer(&sig)), 0, 0, 0); err != nil {
		t.Fatalf("read parent death signal: %v", err)
	}
	if sig != int(unix.SIGKILL) {
		t.Fatalf("expected SIGKILL disposition, got signal %d", sig)
	}
}
