package platform

import "path/filepath"

// JournalTool is the systemd log store maintenance command
const JournalTool = "journalctl"

// GetAptCachePath returns the APT downloaded-archives path
func GetAptCachePath() string {
	return "/var/cache/apt/archives"
}

// GetSnapCachePath returns the Snap cache path
func GetSnapCachePath() string {
	return "/var/lib/snapd/cache"
}

// GetTrashFilesPath returns the freedesktop.org trash "files" directory
func GetTrashFilesPath(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", "Trash", "files")
}

// GetUserCachePath returns ~/.cache. XDG_CACHE_HOME is not consulted;
// targets are fixed locations under the home directory.
func GetUserCachePath(homeDir string) string {
	return filepath.Join(homeDir, ".cache")
}

// GetUserConfigPath returns ~/.config
func GetUserConfigPath(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}
