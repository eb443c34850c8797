package platform

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
)

// Platform represents the operating system platform
type Platform string

const (
	MacOS   Platform = "darwin"
	Linux   Platform = "linux"
	Unknown Platform = "unknown"
)

// Info describes the invoking user and the machine they run on
type Info struct {
	OS       Platform
	HomeDir  string
	Username string
	IsRoot   bool
}

// Detect returns the current platform
func Detect() Platform {
	switch runtime.GOOS {
	case "darwin":
		return MacOS
	case "linux":
		return Linux
	default:
		return Unknown
	}
}

// GetInfo resolves information about the invoking user. $HOME wins over the
// passwd entry so that `sudo -E` and test environments behave predictably.
func GetInfo() (*Info, error) {
	homeDir, err := HomeDir()
	if err != nil {
		return nil, err
	}

	info := &Info{
		OS:      Detect(),
		HomeDir: homeDir,
	}

	if currentUser, err := user.Current(); err == nil {
		info.Username = currentUser.Username
		info.IsRoot = currentUser.Uid == "0"
	}

	return info, nil
}

// HomeDir returns the invoking user's home directory
func HomeDir() (string, error) {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Clean(home), nil
	}

	currentUser, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	if currentUser.HomeDir == "" {
		return "", ErrNoHomeDir
	}
	return filepath.Clean(currentUser.HomeDir), nil
}

// ProtectedPaths lists top-level system directories
func ProtectedPaths() []string {
	return []string{
		"/",
		"/bin",
		"/boot",
		"/dev",
		"/etc",
		"/home",
		"/lib",
		"/lib64",
		"/opt",
		"/proc",
		"/root",
		"/run",
		"/sbin",
		"/srv",
		"/sys",
		"/tmp",
		"/usr",
		"/var",
		"/var/cache",
		"/var/lib",
		"/System",         // macOS
		"/Applications",   // macOS
		"/Library/System", // macOS
	}
}

// Errors
var (
	ErrNoHomeDir = &PlatformError{"home directory is not set"}
)

// PlatformError represents a platform-related error
type PlatformError struct {
	Message string
}

func (e *PlatformError) Error() string {
	return e.Message
}
