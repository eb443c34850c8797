package cleaner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/fenilsonani/stellar-clean/internal/logging"
	"github.com/fenilsonani/stellar-clean/internal/progress"
	"github.com/fenilsonani/stellar-clean/internal/registry"
	"github.com/fenilsonani/stellar-clean/internal/security"
)

// Outcome details. The wording is shown to users as-is.
const (
	StatusInvalidPath = "ruta inválida"
	StatusEmptied     = "vaciado (force=False)"
	StatusNotRemoved  = "no eliminado (force=False)"
	StatusNotFound    = "no existe"
)

// CleanOutcome is the result of one deletion attempt
type CleanOutcome struct {
	Target  string         `json:"target" yaml:"target"`
	Path    string         `json:"path" yaml:"path"`
	Success bool           `json:"success" yaml:"success"`
	Detail  string         `json:"detail,omitempty" yaml:"detail,omitempty"`
	Err     *DeletionError `json:"-" yaml:"-"`
}

// Options selects what PerformClean removes
type Options struct {
	Targets       []string
	IncludeSystem bool
	// Force removes directories and files outright. Without it directories
	// are emptied in place and files are left alone.
	Force bool
	// VacuumJournalSize, when set together with IncludeSystem, is passed to
	// the journal tool as --vacuum-size.
	VacuumJournalSize string
}

// Cleaner deletes the paths backing cleanup targets
type Cleaner struct {
	candidates       registry.Source
	pathValidator    *security.PathValidator
	vacuumer         *Vacuumer
	logger           zerolog.Logger
	progressReporter *progress.ProgressReporter
}

// New creates a Cleaner. A nil source uses registry.GetCandidates.
func New(source registry.Source) *Cleaner {
	if source == nil {
		source = registry.GetCandidates
	}
	return &Cleaner{
		candidates:    source,
		pathValidator: security.NewPathValidator(),
		vacuumer:      NewVacuumer(""),
		logger:        logging.GetLogger("cleaner"),
	}
}

// SetVacuumer replaces the journal vacuumer
func (c *Cleaner) SetVacuumer(v *Vacuumer) {
	c.vacuumer = v
}

// SetProgressReporter sets a progress reporter; nil disables reporting
func (c *Cleaner) SetProgressReporter(pr *progress.ProgressReporter) {
	c.progressReporter = pr
}

// PathValidator exposes the guard so callers can protect extra paths
func (c *Cleaner) PathValidator() *security.PathValidator {
	return c.pathValidator
}

type cleanJob struct {
	target string
	path   string
}

func (c *Cleaner) resolve(opts Options) ([]cleanJob, error) {
	candidates, err := c.candidates()
	if err != nil {
		return nil, err
	}

	var jobs []cleanJob
	for _, t := range opts.Targets {
		for _, p := range candidates.Resolve(t, opts.IncludeSystem) {
			jobs = append(jobs, cleanJob{target: t, path: p})
		}
	}
	return jobs, nil
}

// PerformClean deletes the paths of the requested targets and returns one
// outcome per resolved path, in request order, followed by the journal
// vacuum outcome when requested. Failures are reported as outcomes; one
// bad path never stops the rest of the batch. The only error is failure
// to build the registry.
func (c *Cleaner) PerformClean(ctx context.Context, opts Options) ([]CleanOutcome, error) {
	jobs, err := c.resolve(opts)
	if err != nil {
		return nil, err
	}

	defer logging.LogOperationStart(c.logger, "perform_clean")()

	startTime := time.Now()
	outcomes := make([]CleanOutcome, 0, len(jobs)+1)
	failed := 0

	for i, job := range jobs {
		c.reportCleanProgress(progress.PhaseCleaning, job.target, job.path, i, len(jobs), failed, startTime)

		outcome := c.cleanPath(job, opts.Force)
		if !outcome.Success {
			failed++
		}
		c.logOutcome(outcome)
		outcomes = append(outcomes, outcome)
	}

	if opts.IncludeSystem && opts.VacuumJournalSize != "" {
		c.reportCleanProgress(progress.PhaseVacuum, string(registry.Journal), c.vacuumer.Tool(), len(jobs), len(jobs), failed, startTime)

		outcome := c.vacuumer.Vacuum(ctx, opts.VacuumJournalSize)
		if !outcome.Success {
			failed++
		}
		outcomes = append(outcomes, outcome)
	}

	c.reportCleanProgress(progress.PhaseComplete, "", "", len(jobs), len(jobs), failed, startTime)

	return outcomes, nil
}

// cleanPath handles one resolved path. A panic is turned into a failed
// outcome so the batch can continue.
func (c *Cleaner) cleanPath(job cleanJob, force bool) (outcome CleanOutcome) {
	outcome = CleanOutcome{Target: job.target, Path: job.path}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic while cleaning: %v", r)
			outcome.Success = false
			outcome.Detail = err.Error()
			outcome.Err = CategorizeError(job.path, err)
		}
	}()

	if err := c.pathValidator.ValidatePathForDeletion(job.path); err != nil {
		outcome.Detail = StatusInvalidPath
		outcome.Err = &DeletionError{Path: job.path, Reason: ErrorInvalidPath, Original: err}
		return outcome
	}

	// Stat follows symlinks so a dangling link counts as missing.
	info, err := os.Stat(job.path)
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
		outcome.Detail = StatusNotFound
		return outcome
	}
	if err != nil {
		return c.withError(outcome, err)
	}

	if info.IsDir() {
		if force {
			return c.withError(outcome, os.RemoveAll(job.path))
		}
		return c.emptyDir(outcome)
	}

	if !force {
		outcome.Detail = StatusNotRemoved
		return outcome
	}
	return c.withError(outcome, os.Remove(job.path))
}

// emptyDir removes every entry of a directory and keeps the directory.
// Entries that cannot be removed are logged and skipped; the outcome only
// fails when the directory itself cannot be listed.
func (c *Cleaner) emptyDir(outcome CleanOutcome) CleanOutcome {
	entries, err := os.ReadDir(outcome.Path)
	if err != nil {
		return c.withError(outcome, err)
	}

	for _, entry := range entries {
		child := filepath.Join(outcome.Path, entry.Name())

		// Symlinks are removed as links, never followed.
		var rmErr error
		if entry.IsDir() {
			rmErr = os.RemoveAll(child)
		} else {
			rmErr = os.Remove(child)
		}

		if rmErr != nil {
			delErr := CategorizeError(child, rmErr)
			c.logger.Debug().
				Str("target", outcome.Target).
				Str("path", child).
				Str("reason", delErr.Reason.String()).
				Err(rmErr).
				Msg("Skipping entry that could not be removed")
		}
	}

	outcome.Success = true
	outcome.Detail = StatusEmptied
	return outcome
}

func (c *Cleaner) withError(outcome CleanOutcome, err error) CleanOutcome {
	if err != nil {
		outcome.Detail = err.Error()
		outcome.Err = CategorizeError(outcome.Path, err)
		return outcome
	}
	outcome.Success = true
	return outcome
}

func (c *Cleaner) logOutcome(o CleanOutcome) {
	event := c.logger.Info()
	if !o.Success && o.Detail != StatusNotFound {
		event = c.logger.Warn()
	}
	event.Str("target", o.Target).
		Str("path", o.Path).
		Bool("success", o.Success).
		Str("detail", o.Detail).
		Msg("Cleaned path")
}

// PathsRequiringElevation returns the existing resolved paths the current
// user most likely cannot clean. It is advisory; PerformClean does not
// consult it.
func (c *Cleaner) PathsRequiringElevation(opts Options) ([]string, error) {
	jobs, err := c.resolve(opts)
	if err != nil {
		return nil, err
	}

	pm := NewPermissionManager()
	if pm.IsRunningAsRoot() {
		return nil, nil
	}

	var paths []string
	for _, job := range jobs {
		info, err := os.Stat(job.path)
		if err != nil {
			continue
		}
		emptyOnly := info.IsDir() && !opts.Force
		if pm.RequiresElevation(job.path, emptyOnly) {
			paths = append(paths, job.path)
		}
	}
	return paths, nil
}

func (c *Cleaner) reportCleanProgress(phase progress.Phase, target, path string, done, total, failed int, startTime time.Time) {
	if c.progressReporter == nil {
		return
	}

	c.progressReporter.UpdateCleanProgress(&progress.CleanProgress{
		Phase:      phase,
		Target:     target,
		Path:       path,
		PathsDone:  done,
		PathsTotal: total,
		Failed:     failed,
		StartTime:  startTime,
	})
}

// Summary counts the outcomes of a clean run
type Summary struct {
	Succeeded int
	Failed    int
	Errors    []*DeletionError
}

// Summarize counts outcomes and collects their categorized errors
func Summarize(outcomes []CleanOutcome) Summary {
	var s Summary
	for _, o := range outcomes {
		if o.Success {
			s.Succeeded++
			continue
		}
		s.Failed++
		if o.Err != nil {
			s.Errors = append(s.Errors, o.Err)
		}
	}
	return s
}
