package core

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// IsRoot reports whether the process runs with an effective UID of 0.
// Most presets live under /var and /cvpi and need it.
func IsRoot() bool {
	return os.Geteuid() == 0
}

// LookupTool returns the absolute path of an external binary on $PATH.
func LookupTool(name string) (string, error) {
	p, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH: %w", name, err)
	}
	return p, nil
}

// HasJournal reports whether journalctl is available on this host.
func HasJournal() bool {
	_, err := exec.LookPath("journalctl")
	return err == nil
}

// PlatformString returns a short description of the running platform,
// e.g. "linux/amd64 (root)".
func PlatformString() string {
	who := "user"
	if IsRoot() {
		who = "root"
	}
	return fmt.Sprintf("%s/%s (%s)", runtime.GOOS, runtime.GOARCH, who)
}
