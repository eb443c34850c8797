package security

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fenilsonani/stellar-clean/internal/platform"
)

var (
	ErrEmptyPath     = errors.New("empty path")
	ErrRootPath      = errors.New("refusing to delete filesystem root")
	ErrRelativePath  = errors.New("path must be absolute")
	ErrProtectedPath = errors.New("refusing to delete protected path")
)

// PathValidator is the last guard before anything is removed
type PathValidator struct {
	protectedPaths []string
}

// NewPathValidator creates a PathValidator that protects the filesystem
// root and the top-level system directories
func NewPathValidator() *PathValidator {
	return &PathValidator{
		protectedPaths: platform.ProtectedPaths(),
	}
}

// ValidatePathForDeletion rejects paths that must never be removed or
// emptied. Only exact matches are rejected; descendants of protected
// directories (e.g. /var/cache/apt/archives) are allowed.
func (pv *PathValidator) ValidatePathForDeletion(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	cleanPath := filepath.Clean(path)
	if cleanPath == "/" || cleanPath == filepath.VolumeName(cleanPath)+string(filepath.Separator) {
		return ErrRootPath
	}

	if !filepath.IsAbs(cleanPath) {
		return fmt.Errorf("%w: %s", ErrRelativePath, path)
	}

	if pv.IsProtectedPath(cleanPath) {
		return fmt.Errorf("%w: %s", ErrProtectedPath, cleanPath)
	}

	return nil
}

// IsProtectedPath checks if a path is exactly one of the protected paths
func (pv *PathValidator) IsProtectedPath(path string) bool {
	cleanPath := filepath.Clean(path)
	for _, protected := range pv.protectedPaths {
		if cleanPath == protected {
			return true
		}
	}
	return false
}

// AddProtectedPath adds a custom protected path
func (pv *PathValidator) AddProtectedPath(path string) {
	if path == "" {
		return
	}
	pv.protectedPaths = append(pv.protectedPaths, filepath.Clean(path))
}
