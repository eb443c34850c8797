package registry

import "sort"

// Target names a logical cleanup category
type Target string

// Scope tells whether a path set can be offered to any user or needs the
// caller's explicit "include system" flag
type Scope int

const (
	ScopeUser Scope = iota
	ScopeSystem
)

func (s Scope) String() string {
	switch s {
	case ScopeUser:
		return "user"
	case ScopeSystem:
		return "system"
	default:
		return "unknown"
	}
}

// User-scope targets
const (
	Trash        Target = "trash"
	Thumbnails   Target = "thumbnails"
	PipCache     Target = "pip_cache"
	AppCache     Target = "app_cache"
	ChromeCache  Target = "chrome_cache"
	FirefoxCache Target = "firefox_cache"
)

// System-scope targets
const (
	AptCache  Target = "apt_cache"
	Journal   Target = "journal"
	SnapCache Target = "snap_cache"
)

var knownTargets = map[Target]Scope{
	Trash:        ScopeUser,
	Thumbnails:   ScopeUser,
	PipCache:     ScopeUser,
	AppCache:     ScopeUser,
	ChromeCache:  ScopeUser,
	FirefoxCache: ScopeUser,
	AptCache:     ScopeSystem,
	Journal:      ScopeSystem,
	SnapCache:    ScopeSystem,
}

// KnownTargets returns every built-in target, sorted by name
func KnownTargets() []Target {
	targets := make([]Target, 0, len(knownTargets))
	for t := range knownTargets {
		targets = append(targets, t)
	}
	sortTargets(targets)
	return targets
}

// ParseTarget maps a caller-supplied name onto the closed set. The second
// return value is false for names that are not built in.
func ParseTarget(name string) (Target, bool) {
	t := Target(name)
	_, ok := knownTargets[t]
	return t, ok
}

// IsKnown reports whether t is a built-in target
func (t Target) IsKnown() bool {
	_, ok := knownTargets[t]
	return ok
}

// Scope returns the scope t is registered under. Unknown targets report
// ScopeUser.
func (t Target) Scope() Scope {
	return knownTargets[t]
}

func (t Target) String() string {
	return string(t)
}

func sortTargets(targets []Target) {
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
}
