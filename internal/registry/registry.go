// Package registry holds the static mapping from cleanup targets to the
// filesystem paths backing them.
//
// The registry is rebuilt on every call so it always reflects the home
// directory of the invoking user. Building it does no I/O beyond path
// construction; existence is checked by the scanner and cleaner.
package registry

import (
	"fmt"
	"path/filepath"

	"github.com/fenilsonani/stellar-clean/internal/platform"
)

// PathSet is the ordered list of paths backing a target within one scope
type PathSet []string

// Candidates is one snapshot of the registry
type Candidates struct {
	User   map[Target]PathSet
	System map[Target]PathSet
}

// Source produces a fresh registry snapshot
type Source func() (*Candidates, error)

// Build constructs the registry for the given home directory
func Build(homeDir string) *Candidates {
	cache := platform.GetUserCachePath(homeDir)
	config := platform.GetUserConfigPath(homeDir)

	return &Candidates{
		User: map[Target]PathSet{
			Trash:      {platform.GetTrashFilesPath(homeDir)},
			Thumbnails: {filepath.Join(cache, "thumbnails")},
			PipCache:   {filepath.Join(cache, "pip")},
			AppCache:   {cache},
			ChromeCache: {
				filepath.Join(cache, "google-chrome"),
				filepath.Join(cache, "chromium"),
				filepath.Join(cache, "brave"),
				filepath.Join(config, "google-chrome", "Default", "Cache"),
				filepath.Join(config, "chromium", "Default", "Cache"),
			},
			FirefoxCache: {filepath.Join(cache, "mozilla")},
		},
		System: map[Target]PathSet{
			AptCache:  {platform.GetAptCachePath()},
			Journal:   {}, // vacuumed through the journal tool, not deleted
			SnapCache: {platform.GetSnapCachePath()},
		},
	}
}

// GetCandidates builds a fresh registry for the invoking user
func GetCandidates() (*Candidates, error) {
	homeDir, err := platform.HomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to build candidate registry: %w", err)
	}
	return Build(homeDir), nil
}

// Resolve returns the paths for a target name. With includeSystem the
// system paths are appended to the user paths; duplicates are kept.
// Names that are not registered resolve to an empty PathSet.
func (c *Candidates) Resolve(name string, includeSystem bool) PathSet {
	t := Target(name)
	paths := append(PathSet{}, c.User[t]...)
	if includeSystem {
		paths = append(paths, c.System[t]...)
	}
	return paths
}

// UserTargets returns the targets a caller can always offer, sorted
func (c *Candidates) UserTargets() []Target {
	return keys(c.User)
}

// SystemTargets returns the targets that need the include-system flag, sorted
func (c *Candidates) SystemTargets() []Target {
	return keys(c.System)
}

// Has reports whether name is registered in the user scope, or in the
// system scope when includeSystem is set
func (c *Candidates) Has(name string, includeSystem bool) bool {
	t := Target(name)
	if _, ok := c.User[t]; ok {
		return true
	}
	if includeSystem {
		_, ok := c.System[t]
		return ok
	}
	return false
}

func keys(m map[Target]PathSet) []Target {
	out := make([]Target, 0, len(m))
	for t := range m {
		out = append(out, t)
	}
	sortTargets(out)
	return out
}
