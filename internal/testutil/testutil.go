// Package testutil provides test helpers and fixtures for stellar-clean tests.
// All file operations use t.TempDir() for safe, isolated testing.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fenilsonani/stellar-clean/internal/registry"
)

// TestFixture holds paths to an isolated fake machine
type TestFixture struct {
	T       *testing.T
	RootDir string // Root temp directory (auto-cleaned)

	HomeDir   string // fake $HOME
	SystemDir string // stands in for / when building system-scope paths
}

// NewFixture creates a new test fixture with a fake home and system root
func NewFixture(t *testing.T) *TestFixture {
	t.Helper()

	root := t.TempDir()

	f := &TestFixture{
		T:         t,
		RootDir:   root,
		HomeDir:   filepath.Join(root, "home", "tester"),
		SystemDir: filepath.Join(root, "sys"),
	}

	for _, dir := range []string{f.HomeDir, f.SystemDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create directory %s: %v", dir, err)
		}
	}

	return f
}

// =============================================================================
// File Creation Helpers
// =============================================================================

// CreateFile creates a file with specified content and returns its path
func (f *TestFixture) CreateFile(relPath string, content []byte) string {
	f.T.Helper()

	fullPath := f.Path(relPath)
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		f.T.Fatalf("failed to create file %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateSizedFile creates a file of exactly size bytes
func (f *TestFixture) CreateSizedFile(relPath string, size int) string {
	f.T.Helper()
	return f.CreateFile(relPath, make([]byte, size))
}

// CreateHomeFile creates a sized file relative to the fake home
func (f *TestFixture) CreateHomeFile(relPath string, size int) string {
	f.T.Helper()
	rel, _ := filepath.Rel(f.RootDir, filepath.Join(f.HomeDir, relPath))
	return f.CreateSizedFile(rel, size)
}

// =============================================================================
// Directory Helpers
// =============================================================================

// CreateDir creates a directory and returns its path
func (f *TestFixture) CreateDir(relPath string) string {
	f.T.Helper()

	fullPath := f.Path(relPath)
	if err := os.MkdirAll(fullPath, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateReadOnlyDir creates a read-only directory holding one file, so
// that the file cannot be deleted and the directory cannot be listed for
// writes. Permissions are restored on cleanup so TempDir removal works.
func (f *TestFixture) CreateReadOnlyDir(relPath string) string {
	f.T.Helper()

	dirPath := f.CreateDir(relPath)
	f.CreateFile(filepath.Join(relPath, "trapped.txt"), []byte("trapped"))
	if err := os.Chmod(dirPath, 0555); err != nil {
		f.T.Fatalf("failed to chmod directory %s: %v", dirPath, err)
	}

	f.T.Cleanup(func() {
		os.Chmod(dirPath, 0755)
	})

	return dirPath
}

// CreateUnreadableDir creates a directory holding one file of size bytes
// and removes all permissions from it
func (f *TestFixture) CreateUnreadableDir(relPath string, size int) string {
	f.T.Helper()

	dirPath := f.CreateDir(relPath)
	f.CreateSizedFile(filepath.Join(relPath, "hidden.bin"), size)
	if err := os.Chmod(dirPath, 0000); err != nil {
		f.T.Fatalf("failed to chmod directory %s: %v", dirPath, err)
	}

	f.T.Cleanup(func() {
		os.Chmod(dirPath, 0755)
	})

	return dirPath
}

// =============================================================================
// Symlink Helpers
// =============================================================================

// CreateSymlink creates a symbolic link at linkPath (relative to the root)
func (f *TestFixture) CreateSymlink(target, linkPath string) string {
	f.T.Helper()

	fullLinkPath := f.Path(linkPath)
	dir := filepath.Dir(fullLinkPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.Symlink(target, fullLinkPath); err != nil {
		f.T.Fatalf("failed to create symlink %s -> %s: %v", fullLinkPath, target, err)
	}

	return fullLinkPath
}

// =============================================================================
// Registry Helpers
// =============================================================================

// Registry returns a registry source serving exactly the given path sets
func Registry(user, system map[registry.Target]registry.PathSet) registry.Source {
	return func() (*registry.Candidates, error) {
		return &registry.Candidates{User: user, System: system}, nil
	}
}

// HomeRegistry returns the built-in registry for the fake home, with every
// system-scope path re-rooted under SystemDir
func (f *TestFixture) HomeRegistry() registry.Source {
	return func() (*registry.Candidates, error) {
		c := registry.Build(f.HomeDir)
		for target, paths := range c.System {
			rerooted := make(registry.PathSet, len(paths))
			for i, p := range paths {
				rerooted[i] = filepath.Join(f.SystemDir, p)
			}
			c.System[target] = rerooted
		}
		return c, nil
	}
}

// =============================================================================
// Path Helpers
// =============================================================================

// Path returns the full path for a relative path within the fixture
func (f *TestFixture) Path(relPath string) string {
	return filepath.Join(f.RootDir, relPath)
}

// =============================================================================
// Assertion Helpers
// =============================================================================

// FileExists checks if a path exists without following a final symlink
func (f *TestFixture) FileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// AssertFileExists fails the test if the path doesn't exist
func (f *TestFixture) AssertFileExists(path string) {
	f.T.Helper()
	if !f.FileExists(path) {
		f.T.Errorf("expected %s to exist", path)
	}
}

// AssertFileNotExists fails the test if the path exists
func (f *TestFixture) AssertFileNotExists(path string) {
	f.T.Helper()
	if f.FileExists(path) {
		f.T.Errorf("expected %s to not exist", path)
	}
}

// AssertEmptyDir fails the test unless path is an existing, empty directory
func (f *TestFixture) AssertEmptyDir(path string) {
	f.T.Helper()
	entries, err := os.ReadDir(path)
	if err != nil {
		f.T.Errorf("expected %s to be a readable directory: %v", path, err)
		return
	}
	if len(entries) != 0 {
		f.T.Errorf("expected %s to be empty, found %d entries", path, len(entries))
	}
}

// =============================================================================
// Utility Functions
// =============================================================================

// IsRoot returns true if running as root
func IsRoot() bool {
	return os.Geteuid() == 0
}

// SkipIfRoot skips the test if running as root; permission checks do not
// apply to root
func SkipIfRoot(t *testing.T) {
	t.Helper()
	if IsRoot() {
		t.Skip("skipping test when running as root")
	}
}

// ContainsString checks if a string contains a substring (case-insensitive)
func ContainsString(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
