package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	toolName = "hkfolio"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644

	// Host directory that collects build and analysis artifacts, relative
	// to the working directory.
	DefaultOutputDir = "output"

	// Directory inside the analysis container that the host output
	// directory is bind-mounted to.
	ContainerOutputDir = "/app/output"
)

// Path to the directory for runtime files (sockets, PIDs).
//
//	Linux:   $XDG_RUNTIME_DIR/hkfolio or /run/user/<uid>/hkfolio
//	macOS:   ~/Library/Caches/hkfolio/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, toolName)
	}
	return filepath.Join(xdg.CacheHome, toolName, "run")
}

// Default path to the Unix domain socket for daemon control.
//
//	Linux:   $XDG_RUNTIME_DIR/hkfolio/hkfolio.sock
//	macOS:   ~/Library/Caches/hkfolio/run/hkfolio.sock
func Socket() string {
	return filepath.Join(Runtime(), toolName+".sock")
}

// Default path to the PID file.
//
//	Linux:   $XDG_RUNTIME_DIR/hkfolio/hkfolio.pid
//	macOS:   ~/Library/Caches/hkfolio/run/hkfolio.pid
func PIDFile() string {
	return filepath.Join(Runtime(), toolName+".pid")
}
