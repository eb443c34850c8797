package cleaner

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// PermissionManager answers whether the current process can remove a path
type PermissionManager struct {
	isRoot bool
}

// NewPermissionManager creates a new PermissionManager
func NewPermissionManager() *PermissionManager {
	return &PermissionManager{
		isRoot: os.Geteuid() == 0,
	}
}

// IsRunningAsRoot checks if the current process is running as root
func (pm *PermissionManager) IsRunningAsRoot() bool {
	return pm.isRoot
}

// CanDelete reports whether path can be removed: its parent directory must
// be writable and searchable by the current user. For a directory that
// will only be emptied, pass the directory itself.
func (pm *PermissionManager) CanDelete(path string) (bool, error) {
	if pm.isRoot {
		return true, nil
	}

	if _, err := os.Lstat(path); err != nil {
		return false, err
	}

	return unix.Access(filepath.Dir(path), unix.W_OK|unix.X_OK) == nil, nil
}

// CanEmpty reports whether the entries of directory dir can be removed
func (pm *PermissionManager) CanEmpty(dir string) (bool, error) {
	if pm.isRoot {
		return true, nil
	}

	if _, err := os.Stat(dir); err != nil {
		return false, err
	}

	return unix.Access(dir, unix.W_OK|unix.X_OK|unix.R_OK) == nil, nil
}

// RequiresElevation checks if a path requires elevated permissions. With
// emptyOnly the path's own entries are checked instead of the path itself.
func (pm *PermissionManager) RequiresElevation(path string, emptyOnly bool) bool {
	if pm.isRoot {
		return false
	}

	var ok bool
	var err error
	if emptyOnly {
		ok, err = pm.CanEmpty(path)
	} else {
		ok, err = pm.CanDelete(path)
	}
	if err != nil {
		return !os.IsNotExist(err)
	}
	return !ok
}
