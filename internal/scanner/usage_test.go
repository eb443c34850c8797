package scanner

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fenilsonani/stellar-clean/internal/testutil"
)

func TestDiskUsageMissingPath(t *testing.T) {
	f := testutil.NewFixture(t)

	assert.Equal(t, int64(0), DiskUsage(f.Path("does/not/exist")))
	assert.Equal(t, int64(0), DiskUsage(""))
}

func TestDiskUsageFile(t *testing.T) {
	f := testutil.NewFixture(t)
	path := f.CreateSizedFile("file.bin", 4321)

	assert.Equal(t, int64(4321), DiskUsage(path))
}

func TestDiskUsageFlatDirectory(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateSizedFile("flat/a", 10)
	f.CreateSizedFile("flat/b", 200)
	f.CreateSizedFile("flat/c", 3000)

	assert.Equal(t, int64(3210), DiskUsage(f.Path("flat")))
}

func TestDiskUsageNestedDirectory(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateSizedFile("tree/a", 1)
	f.CreateSizedFile("tree/x/b", 20)
	f.CreateSizedFile("tree/x/y/c", 300)
	f.CreateDir("tree/empty")

	assert.Equal(t, int64(321), DiskUsage(f.Path("tree")))
}

func TestDiskUsageEmptyDirectory(t *testing.T) {
	f := testutil.NewFixture(t)
	assert.Equal(t, int64(0), DiskUsage(f.CreateDir("empty")))
}

func TestDiskUsageSkipsUnreadableSubtree(t *testing.T) {
	testutil.SkipIfRoot(t)

	f := testutil.NewFixture(t)
	f.CreateSizedFile("mixed/visible", 100)
	f.CreateUnreadableDir("mixed/locked", 5000)

	// The locked subtree is excluded, not an error.
	assert.Equal(t, int64(100), DiskUsage(f.Path("mixed")))
}

func TestDiskUsageDoesNotFollowSymlinkedDirectories(t *testing.T) {
	f := testutil.NewFixture(t)
	outside := f.CreateSizedFile("outside/big", 10000)
	f.CreateSizedFile("root/own", 7)
	f.CreateSymlink(filepath.Dir(outside), "root/link-to-outside")

	assert.Equal(t, int64(7), DiskUsage(f.Path("root")))
}

func TestDiskUsageCountsSymlinkedFileTarget(t *testing.T) {
	f := testutil.NewFixture(t)
	target := f.CreateSizedFile("data/target", 64)
	f.CreateSizedFile("root/own", 6)
	f.CreateSymlink(target, "root/link")

	assert.Equal(t, int64(70), DiskUsage(f.Path("root")))
}

func TestDiskUsageSurvivesSymlinkLoop(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateSizedFile("loop/file", 5)
	f.CreateSymlink(f.Path("loop"), "loop/self")
	f.CreateSymlink(f.Path("loop/b"), "loop/a")
	f.CreateSymlink(f.Path("loop/a"), "loop/b")

	assert.Equal(t, int64(5), DiskUsage(f.Path("loop")))
}

func TestDiskUsageFollowsSymlinkedRoot(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateSizedFile("real/a", 11)
	f.CreateSizedFile("real/b", 22)
	link := f.CreateSymlink(f.Path("real"), "alias")

	assert.Equal(t, int64(33), DiskUsage(link))
}
