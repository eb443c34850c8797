// Package scanner measures cleanup targets without touching them.
package scanner

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/fenilsonani/stellar-clean/internal/logging"
	"github.com/fenilsonani/stellar-clean/internal/progress"
	"github.com/fenilsonani/stellar-clean/internal/registry"
)

// Scanner resolves targets through the candidate registry and measures them
type Scanner struct {
	candidates       registry.Source
	logger           zerolog.Logger
	progressReporter *progress.ProgressReporter
}

// New creates a Scanner. A nil source uses registry.GetCandidates.
func New(source registry.Source) *Scanner {
	if source == nil {
		source = registry.GetCandidates
	}
	return &Scanner{
		candidates: source,
		logger:     logging.GetLogger("scanner"),
	}
}

// SetProgressReporter sets a progress reporter; nil disables reporting
func (s *Scanner) SetProgressReporter(pr *progress.ProgressReporter) {
	s.progressReporter = pr
}

// Simulate reports what cleaning the given targets would reclaim. It returns
// one result per resolved path, in request order, and the total size of the
// paths that exist. Unknown targets contribute nothing. The filesystem is
// never modified. The only error is failure to build the registry.
func (s *Scanner) Simulate(targets []string, includeSystem bool) (ScanResults, int64, error) {
	candidates, err := s.candidates()
	if err != nil {
		return nil, 0, err
	}

	type job struct {
		target string
		path   string
	}
	var jobs []job
	for _, t := range targets {
		paths := candidates.Resolve(t, includeSystem)
		if len(paths) == 0 {
			s.logger.Debug().Str("target", t).Bool("include_system", includeSystem).Msg("Target resolves to no paths")
		}
		for _, p := range paths {
			jobs = append(jobs, job{target: t, path: p})
		}
	}

	startTime := time.Now()
	results := make(ScanResults, 0, len(jobs))
	var total int64

	for i, j := range jobs {
		res := ScanResult{Target: j.target, Path: j.path}
		if exists(j.path) {
			res.Exists = true
			res.Size = DiskUsage(j.path)
			total += res.Size
		}
		results = append(results, res)

		s.logger.Debug().
			Str("target", j.target).
			Str("path", j.path).
			Bool("exists", res.Exists).
			Int64("size", res.Size).
			Msg("Measured path")

		s.reportScanProgress(progress.PhaseScanning, j.target, j.path, i+1, len(jobs), total, startTime)
	}

	s.reportScanProgress(progress.PhaseComplete, "", "", len(jobs), len(jobs), total, startTime)

	return results, total, nil
}

// exists follows symlinks; any stat failure counts as missing
func exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func (s *Scanner) reportScanProgress(phase progress.Phase, target, path string, done, total int, size int64, startTime time.Time) {
	if s.progressReporter == nil {
		return
	}

	s.progressReporter.UpdateScanProgress(&progress.ScanProgress{
		Phase:      phase,
		Target:     target,
		Path:       path,
		PathsDone:  done,
		PathsTotal: total,
		TotalSize:  size,
		StartTime:  startTime,
	})
}
