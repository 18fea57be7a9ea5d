package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	toolName = "shipforge"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644

	// Permission mode for files holding secret material.
	SecretFileMode os.FileMode = 0600
)

// Path to the directory for transient run files (decoded secrets, staging
// archives). Contents are scoped to a single invocation and removed when the
// run finishes.
//
//	Linux:   $XDG_RUNTIME_DIR/shipforge or ~/.cache/shipforge/run
//	macOS:   ~/Library/Caches/shipforge/run
func Scratch() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, toolName)
	}
	return filepath.Join(xdg.CacheHome, toolName, "run")
}

// Default containerd socket address for isolated builds.
//
// Honors $CONTAINERD_ADDRESS when set, falling back to the system socket.
func ContainerdSocket() string {
	if addr := os.Getenv("CONTAINERD_ADDRESS"); addr != "" {
		return addr
	}
	return "/run/containerd/containerd.sock"
}

// Default distribution directory, relative to the working directory.
func DistDir() string {
	return "dist"
}
