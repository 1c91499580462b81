package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Paintersrp/tether/internal/launcher"
)

func main() {
	err := launcher.New().Run(os.Args[1:])
	if err == nil {
		// A successful exec never returns.
		return
	}
	if errors.Is(err, launcher.ErrUsage) {
		fmt.Fprintf(os.Stderr, "usage: %s /path/to/target [args...]\n", filepath.Base(os.Args[0]))
	} else {
		fmt.Fprintf(os.Stderr, "tether: %v\n", err)
	}
	os.Exit(1)
}
