package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
)

// walkConfig keeps the walk inside the root: symlinked directories are
// reported as entries, not descended into. One worker keeps the walk
// sequential.
var walkConfig = fastwalk.Config{
	Follow:     false,
	NumWorkers: 1,
}

// DiskUsage returns the apparent size of path in bytes.
//
// A missing path measures 0 and a regular file measures its size. For a
// directory the sizes of all contained files are summed. The result is a
// best-effort lower bound: any file or subdirectory that cannot be read
// (permission or I/O error) is skipped silently and excluded from the total.
// Symlinked files count the size of their target; symlinked directories are
// not followed.
func DiskUsage(path string) int64 {
	if path == "" {
		return 0
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	if !info.IsDir() {
		return info.Size()
	}

	root := path
	if linfo, err := os.Lstat(path); err == nil && linfo.Mode()&fs.ModeSymlink != 0 {
		// The root itself is followed, like stat would.
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			return 0
		}
		root = resolved
	}

	var total atomic.Int64
	_ = fastwalk.Walk(&walkConfig, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if d.IsDir() {
			return nil
		}
		total.Add(entrySize(p, d))
		return nil
	})

	return total.Load()
}

// entrySize measures a non-directory entry; 0 when it cannot be measured
func entrySize(path string, d fs.DirEntry) int64 {
	if d.Type()&fs.ModeSymlink != 0 {
		target, err := os.Stat(path)
		if err != nil || target.IsDir() {
			return 0
		}
		return target.Size()
	}

	info, err := d.Info()
	if err != nil {
		return 0
	}
	return info.Size()
}
