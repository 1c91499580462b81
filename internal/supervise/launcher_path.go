package supervise

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// LauncherName is the binary the supervisor looks for when no explicit
// launcher path is configured.
const LauncherName = "tether"

// ResolveLauncher locates the launcher binary. An explicit path wins;
// otherwise a sibling of the current executable is preferred over PATH,
// so an installed tetherctl finds the launcher it shipped with.
func ResolveLauncher(explicit string) (string, error) {
	if explicit != "" {
		if strings.ContainsRune(explicit, os.PathSeparator) {
			if err := checkExecutable(explicit); err != nil {
				return "", err
			}
			return filepath.Abs(explicit)
		}
		path, err := exec.LookPath(explicit)
		if err != nil {
			return "", fmt.Errorf("resolve launcher %q: %w", explicit, err)
		}
		return path, nil
	}

	if exe, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(exe), LauncherName)
		if err := checkExecutable(sibling); err == nil {
			return sibling, nil
		}
	}

	path, err := exec.LookPath(LauncherName)
	if err != nil {
		return "", fmt.Errorf("locate %s binary: %w", LauncherName, err)
	}
	return path, nil
}

func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("launcher %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("launcher %s is a directory", path)
	}
	if info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("launcher %s is not executable", path)
	}
	return nil
}
