package cleaner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenilsonani/stellar-clean/internal/progress"
	"github.com/fenilsonani/stellar-clean/internal/registry"
	"github.com/fenilsonani/stellar-clean/internal/scanner"
	"github.com/fenilsonani/stellar-clean/internal/testutil"
)

func userRegistry(paths map[registry.Target]registry.PathSet) registry.Source {
	return testutil.Registry(paths, nil)
}

func TestPerformCleanEmptiesDirectory(t *testing.T) {
	f := testutil.NewFixture(t)
	cacheDir := f.CreateDir("test_cache")
	f.CreateSizedFile("test_cache/one", 100)
	f.CreateSizedFile("test_cache/two", 250)
	f.CreateSizedFile("test_cache/nested/three", 10)

	source := userRegistry(map[registry.Target]registry.PathSet{"cache": {cacheDir}})

	s := scanner.New(source)
	_, total, err := s.Simulate([]string{"cache"}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(360), total)

	c := New(source)
	outcomes, err := c.PerformClean(context.Background(), Options{Targets: []string{"cache"}})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, CleanOutcome{Target: "cache", Path: cacheDir, Success: true, Detail: StatusEmptied}, outcomes[0])

	f.AssertEmptyDir(cacheDir)

	_, total, err = s.Simulate([]string{"cache"}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestPerformCleanFile(t *testing.T) {
	f := testutil.NewFixture(t)
	file := f.CreateSizedFile("cache.bin", 500)
	source := userRegistry(map[registry.Target]registry.PathSet{"cache": {file}})
	c := New(source)

	outcomes, err := c.PerformClean(context.Background(), Options{Targets: []string{"cache"}})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.False(t, outcomes[0].Success)
	assert.Equal(t, StatusNotRemoved, outcomes[0].Detail)
	f.AssertFileExists(file)

	outcomes, err = c.PerformClean(context.Background(), Options{Targets: []string{"cache"}, Force: true})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Success)
	assert.Empty(t, outcomes[0].Detail)
	f.AssertFileNotExists(file)
}

func TestPerformCleanForceIsIdempotent(t *testing.T) {
	f := testutil.NewFixture(t)
	dir := f.CreateDir("cache")
	f.CreateSizedFile("cache/a", 10)
	file := f.CreateSizedFile("loose.bin", 10)

	c := New(userRegistry(map[registry.Target]registry.PathSet{"cache": {dir, file}}))
	opts := Options{Targets: []string{"cache"}, Force: true}

	first, err := c.PerformClean(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, first, 2)
	for _, o := range first {
		assert.True(t, o.Success, o.Path)
	}
	f.AssertFileNotExists(dir)
	f.AssertFileNotExists(file)

	second, err := c.PerformClean(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, second, 2)
	for _, o := range second {
		assert.False(t, o.Success)
		assert.Equal(t, StatusNotFound, o.Detail)
		assert.Nil(t, o.Err)
	}
}

func TestPerformCleanRefusesUnsafePaths(t *testing.T) {
	f := testutil.NewFixture(t)
	marker := f.CreateSizedFile("marker", 1)

	unsafe := registry.PathSet{"", "/", "//", "/.", "relative/cache", "/usr", "/etc/"}
	source := testutil.Registry(
		map[registry.Target]registry.PathSet{"cache": unsafe},
		map[registry.Target]registry.PathSet{"cache": unsafe},
	)
	c := New(source)

	for _, force := range []bool{false, true} {
		outcomes, err := c.PerformClean(context.Background(), Options{
			Targets:       []string{"cache"},
			IncludeSystem: true,
			Force:         force,
		})
		require.NoError(t, err)
		require.Len(t, outcomes, 2*len(unsafe))
		for _, o := range outcomes {
			assert.False(t, o.Success, "path %q", o.Path)
			assert.Equal(t, StatusInvalidPath, o.Detail, "path %q", o.Path)
			require.NotNil(t, o.Err)
			assert.Equal(t, ErrorInvalidPath, o.Err.Reason)
		}
	}

	f.AssertFileExists(marker)
	_, err := os.Stat("/")
	require.NoError(t, err)
}

func TestPerformCleanUnknownTarget(t *testing.T) {
	f := testutil.NewFixture(t)
	c := New(f.HomeRegistry())

	outcomes, err := c.PerformClean(context.Background(), Options{
		Targets:       []string{"not_a_target", "TRASH"},
		IncludeSystem: true,
		Force:         true,
	})
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

func TestPerformCleanRegistryError(t *testing.T) {
	boom := errors.New("no home")
	c := New(func() (*registry.Candidates, error) { return nil, boom })

	outcomes, err := c.PerformClean(context.Background(), Options{Targets: []string{"trash"}})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, outcomes)
}

func TestPerformCleanHomeRegistry(t *testing.T) {
	f := testutil.NewFixture(t)
	thumb := f.CreateHomeFile(".cache/thumbnails/normal/a.png", 64)
	trash := f.CreateHomeFile(".local/share/Trash/files/old.txt", 32)
	apt := f.CreateFile("sys/var/cache/apt/archives/pkg.deb", []byte("deb"))

	c := New(f.HomeRegistry())
	outcomes, err := c.PerformClean(context.Background(), Options{
		Targets: []string{"thumbnails", "trash", "apt_cache"},
	})
	require.NoError(t, err)

	// apt_cache is system scope and is skipped without IncludeSystem.
	require.Len(t, outcomes, 2)
	assert.Equal(t, "thumbnails", outcomes[0].Target)
	assert.Equal(t, "trash", outcomes[1].Target)
	f.AssertFileNotExists(thumb)
	f.AssertFileNotExists(trash)
	f.AssertFileExists(apt)
	f.AssertFileExists(filepath.Join(f.HomeDir, ".cache", "thumbnails"))

	outcomes, err = c.PerformClean(context.Background(), Options{
		Targets:       []string{"apt_cache"},
		IncludeSystem: true,
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusEmptied, outcomes[0].Detail)
	f.AssertFileNotExists(apt)
}

func TestPerformCleanRemovesSymlinksWithoutFollowing(t *testing.T) {
	f := testutil.NewFixture(t)
	outside := f.CreateDir("outside")
	keep := f.CreateSizedFile("outside/keep.txt", 10)
	keepFile := f.CreateSizedFile("precious.txt", 10)

	cacheDir := f.CreateDir("cache")
	f.CreateSymlink(outside, "cache/dirlink")
	f.CreateSymlink(keepFile, "cache/filelink")

	c := New(userRegistry(map[registry.Target]registry.PathSet{"cache": {cacheDir}}))
	outcomes, err := c.PerformClean(context.Background(), Options{Targets: []string{"cache"}})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Success)

	f.AssertEmptyDir(cacheDir)
	f.AssertFileExists(keep)
	f.AssertFileExists(keepFile)
}

func TestPerformCleanDanglingSymlinkDoesNotExist(t *testing.T) {
	f := testutil.NewFixture(t)
	link := f.CreateSymlink(f.Path("nowhere"), "dangling")

	c := New(userRegistry(map[registry.Target]registry.PathSet{"cache": {link}}))
	outcomes, err := c.PerformClean(context.Background(), Options{Targets: []string{"cache"}, Force: true})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusNotFound, outcomes[0].Detail)
	assert.True(t, f.FileExists(link))
}

func TestPerformCleanPartialFailureContinues(t *testing.T) {
	testutil.SkipIfRoot(t)

	f := testutil.NewFixture(t)
	locked := f.CreateReadOnlyDir("locked")
	after := f.CreateDir("after")
	f.CreateSizedFile("after/x", 5)

	c := New(userRegistry(map[registry.Target]registry.PathSet{"cache": {locked, after}}))

	// Emptying swallows per-entry failures.
	outcomes, err := c.PerformClean(context.Background(), Options{Targets: []string{"cache"}})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].Success)
	assert.Equal(t, StatusEmptied, outcomes[0].Detail)
	f.AssertFileExists(filepath.Join(locked, "trapped.txt"))
	assert.True(t, outcomes[1].Success)
	f.AssertEmptyDir(after)

	// Forced removal reports the failure and keeps going.
	f.CreateSizedFile("after/y", 5)
	outcomes, err = c.PerformClean(context.Background(), Options{Targets: []string{"cache"}, Force: true})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.False(t, outcomes[0].Success)
	assert.NotEmpty(t, outcomes[0].Detail)
	require.NotNil(t, outcomes[0].Err)
	assert.Equal(t, ErrorPermissionDenied, outcomes[0].Err.Reason)
	assert.True(t, outcomes[1].Success)
	f.AssertFileNotExists(after)

	summary := Summarize(outcomes)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Len(t, summary.Errors, 1)
}

func TestPerformCleanUnreadableDirFails(t *testing.T) {
	testutil.SkipIfRoot(t)

	f := testutil.NewFixture(t)
	dir := f.CreateUnreadableDir("sealed", 10)

	c := New(userRegistry(map[registry.Target]registry.PathSet{"cache": {dir}}))
	outcomes, err := c.PerformClean(context.Background(), Options{Targets: []string{"cache"}})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.False(t, outcomes[0].Success)
	assert.Contains(t, outcomes[0].Detail, "permission denied")
}

func TestPerformCleanUnstatablePathFails(t *testing.T) {
	testutil.SkipIfRoot(t)

	f := testutil.NewFixture(t)
	sealed := f.CreateUnreadableDir("sealed", 10)
	hidden := filepath.Join(sealed, "hidden.bin")

	c := New(userRegistry(map[registry.Target]registry.PathSet{"cache": {hidden}}))
	outcomes, err := c.PerformClean(context.Background(), Options{Targets: []string{"cache"}, Force: true})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.False(t, outcomes[0].Success)
	assert.NotEqual(t, StatusNotFound, outcomes[0].Detail)
	assert.Contains(t, outcomes[0].Detail, "permission denied")
	require.NotNil(t, outcomes[0].Err)
	assert.Equal(t, ErrorPermissionDenied, outcomes[0].Err.Reason)
}

func TestPerformCleanPathUnderFileDoesNotExist(t *testing.T) {
	f := testutil.NewFixture(t)
	file := f.CreateSizedFile("plain", 4)

	c := New(userRegistry(map[registry.Target]registry.PathSet{"cache": {filepath.Join(file, "child")}}))
	outcomes, err := c.PerformClean(context.Background(), Options{Targets: []string{"cache"}, Force: true})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusNotFound, outcomes[0].Detail)
	assert.Nil(t, outcomes[0].Err)
}

func TestPerformCleanVacuumMissingTool(t *testing.T) {
	f := testutil.NewFixture(t)
	dir := f.CreateDir("cache")
	f.CreateSizedFile("cache/a", 10)

	c := New(testutil.Registry(
		map[registry.Target]registry.PathSet{"cache": {dir}},
		map[registry.Target]registry.PathSet{"journal": {}},
	))
	c.SetVacuumer(NewVacuumer("stellar-clean-no-such-journal-tool"))

	outcomes, err := c.PerformClean(context.Background(), Options{
		Targets:           []string{"cache", "journal"},
		IncludeSystem:     true,
		VacuumJournalSize: "100M",
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, "cache", outcomes[0].Target)
	assert.True(t, outcomes[0].Success)
	assert.Equal(t, StatusEmptied, outcomes[0].Detail)

	assert.Equal(t, "journal", outcomes[1].Target)
	assert.False(t, outcomes[1].Success)
	assert.NotEmpty(t, outcomes[1].Detail)
}

func TestPerformCleanVacuumNeedsSystemAndSize(t *testing.T) {
	c := New(testutil.Registry(nil, nil))
	c.SetVacuumer(NewVacuumer("stellar-clean-no-such-journal-tool"))

	tests := []struct {
		name string
		opts Options
	}{
		{"no system flag", Options{VacuumJournalSize: "100M"}},
		{"no size", Options{IncludeSystem: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcomes, err := c.PerformClean(context.Background(), tt.opts)
			require.NoError(t, err)
			assert.Empty(t, outcomes)
		})
	}
}

func TestPerformCleanReportsProgress(t *testing.T) {
	f := testutil.NewFixture(t)
	a := f.CreateDir("a")
	b := f.CreateDir("b")

	c := New(userRegistry(map[registry.Target]registry.PathSet{"cache": {a, b}}))
	pr := progress.NewProgressReporter()
	c.SetProgressReporter(pr)
	ch := pr.Subscribe()
	defer pr.Unsubscribe(ch)

	_, err := c.PerformClean(context.Background(), Options{Targets: []string{"cache"}})
	require.NoError(t, err)

	var updates []*progress.CleanProgress
	for len(ch) > 0 {
		if p, ok := (<-ch).(*progress.CleanProgress); ok {
			updates = append(updates, p)
		}
	}

	require.Len(t, updates, 3)
	assert.Equal(t, a, updates[0].Path)
	assert.Equal(t, b, updates[1].Path)
	assert.Equal(t, progress.PhaseComplete, updates[2].Phase)
	assert.Equal(t, 2, updates[2].PathsDone)

	last := pr.GetCleanProgress()
	require.NotNil(t, last)
	assert.Equal(t, progress.PhaseComplete, last.Phase)
}

func TestPathsRequiringElevation(t *testing.T) {
	testutil.SkipIfRoot(t)

	f := testutil.NewFixture(t)
	open := f.CreateDir("open")
	locked := f.CreateReadOnlyDir("locked")

	c := New(userRegistry(map[registry.Target]registry.PathSet{
		"cache": {open, locked, f.Path("missing")},
	}))

	paths, err := c.PathsRequiringElevation(Options{Targets: []string{"cache"}})
	require.NoError(t, err)
	assert.Equal(t, []string{locked}, paths)
}

func TestSummarize(t *testing.T) {
	delErr := &DeletionError{Path: "/x", Reason: ErrorPermissionDenied}
	outcomes := []CleanOutcome{
		{Target: "a", Path: "/a", Success: true, Detail: StatusEmptied},
		{Target: "b", Path: "/b", Detail: StatusNotFound},
		{Target: "c", Path: "/x", Detail: "permission denied", Err: delErr},
	}

	s := Summarize(outcomes)
	assert.Equal(t, 1, s.Succeeded)
	assert.Equal(t, 2, s.Failed)
	assert.Equal(t, []*DeletionError{delErr}, s.Errors)
}
