package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fenilsonani/stellar-clean/internal/cleaner"
	"github.com/fenilsonani/stellar-clean/internal/config"
	"github.com/fenilsonani/stellar-clean/internal/procs"
	"github.com/fenilsonani/stellar-clean/internal/progress"
	"github.com/fenilsonani/stellar-clean/internal/registry"
	"github.com/fenilsonani/stellar-clean/internal/reporter"
	"github.com/fenilsonani/stellar-clean/internal/scanner"
	"github.com/fenilsonani/stellar-clean/internal/ui"
	"github.com/fenilsonani/stellar-clean/internal/ui/styles"
)

func runScan(cmd *cobra.Command, args []string) error {
	format, err := parseOutput()
	if err != nil {
		return err
	}

	candidates, err := registry.GetCandidates()
	if err != nil {
		return err
	}
	targets := resolveTargets(args, cfg.DefaultTargets, candidates, includeSystem)

	scnr := scanner.New(nil)
	pr := progress.NewProgressReporter()
	scnr.SetProgressReporter(pr)

	stopProgress := watchProgress(pr, format)
	results, total, err := scnr.Simulate(targets, includeSystem)
	stopProgress()
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if outputFile != "" {
		if err := reporter.SaveScanToFile(results, total, outputFile, format); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report saved to: %s\n", outputFile)
		return nil
	}

	if err := reporter.New(cmd.OutOrStdout(), format).ReportScan(results, total); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	return nil
}

func runClean(cmd *cobra.Command, args []string) error {
	format, err := parseOutput()
	if err != nil {
		return err
	}

	candidates, err := registry.GetCandidates()
	if err != nil {
		return err
	}
	targets := resolveTargets(args, cfg.DefaultTargets, candidates, includeSystem)
	if vacuumSize != "" && !includeSystem {
		log.Warn().Str("size", vacuumSize).Msg("Journal vacuum requested without --system; skipping it")
	}

	ctx := cmd.Context()
	errOut := cmd.ErrOrStderr()
	theme := styles.NewTheme(errOut)

	if cfg.WarnRunningBrowsers && touchesBrowsers(targets) {
		warnRunningBrowsers(ctx, errOut, theme)
	}

	clnr := newCleaner()
	opts := cleaner.Options{
		Targets:           targets,
		IncludeSystem:     includeSystem,
		Force:             force,
		VacuumJournalSize: vacuumSize,
	}

	if elevated, err := clnr.PathsRequiringElevation(opts); err == nil && len(elevated) > 0 {
		fmt.Fprintln(errOut, theme.Warning.Render(
			fmt.Sprintf("%d paths are likely not writable by you; run with sudo to clean them.", len(elevated))))
	}

	if !assumeYes {
		if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			return fmt.Errorf("refusing to clean without confirmation: stdin is not a terminal (use --yes)")
		}
		mode := "empty directories in place"
		if force {
			mode = "remove directories and files"
		}
		prompt := fmt.Sprintf("Clean %s (%s)? (y/N): ", strings.Join(targets, ", "), mode)
		if !confirm(os.Stdin, errOut, prompt) {
			fmt.Fprintln(errOut, "Cleanup cancelled")
			return nil
		}
	}

	measure := scanner.New(nil)
	_, before, err := measure.Simulate(targets, includeSystem)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	pr := progress.NewProgressReporter()
	clnr.SetProgressReporter(pr)

	stopProgress := watchProgress(pr, format)
	outcomes, err := clnr.PerformClean(ctx, opts)
	stopProgress()
	if err != nil {
		return fmt.Errorf("clean failed: %w", err)
	}

	_, after, err := measure.Simulate(targets, includeSystem)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if err := reporter.New(cmd.OutOrStdout(), format).ReportClean(outcomes, reclaimed(before, after)); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	return nil
}

// reclaimed is the drop in measured size across a clean. Paths that grew in
// the meantime (e.g. a browser writing its cache) never yield a negative.
func reclaimed(before, after int64) int64 {
	if after >= before {
		return 0
	}
	return before - after
}

// resolveTargets picks the targets to act on: explicit arguments first,
// then the configured defaults, then every target available in scope
func resolveTargets(args, defaults []string, candidates *registry.Candidates, includeSystem bool) []string {
	if len(args) > 0 {
		return args
	}
	if len(defaults) > 0 {
		return defaults
	}

	var targets []string
	for _, t := range candidates.UserTargets() {
		targets = append(targets, string(t))
	}
	if includeSystem {
		for _, t := range candidates.SystemTargets() {
			if !candidates.Has(string(t), false) {
				targets = append(targets, string(t))
			}
		}
	}
	return targets
}

// confirm asks a yes/no question and defaults to no
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)

	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(response)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func touchesBrowsers(targets []string) bool {
	for _, t := range targets {
		switch registry.Target(t) {
		case registry.ChromeCache, registry.FirefoxCache:
			return true
		}
	}
	return false
}

func warnRunningBrowsers(ctx context.Context, out io.Writer, theme styles.Theme) {
	lister, err := procs.New(cfg.ProcessLister)
	if err != nil {
		log.Debug().Err(err).Msg("No process lister; skipping browser check")
		return
	}

	browsers := procs.DetectRunningBrowsers(ctx, lister)
	if len(browsers) == 0 {
		return
	}

	fmt.Fprintln(out, theme.Warning.Render(fmt.Sprintf(
		"Running browsers detected (%s). Close them first or their caches may be rebuilt or locked.",
		strings.Join(browsers, ", "))))
}

// watchProgress shows engine progress while an operation runs: a live line
// when stderr is a terminal and the report is human-readable, debug log
// lines otherwise. The returned func stops watching.
func watchProgress(pr *progress.ProgressReporter, format reporter.OutputFormat) func() {
	ch := pr.Subscribe()
	done := make(chan struct{})

	live := isatty.IsTerminal(os.Stderr.Fd()) &&
		(format == reporter.FormatSummary || format == reporter.FormatTable)

	if live {
		lp := ui.NewLiveProgress(os.Stderr)
		go func() {
			defer close(done)
			lp.Watch(ch)
			lp.Finish()
		}()
	} else {
		logger := log.With().Str("component", "progress").Logger()
		go func() {
			defer close(done)
			for update := range ch {
				switch p := update.(type) {
				case *progress.ScanProgress:
					logger.Debug().Msg(progress.FormatScanProgress(p))
				case *progress.CleanProgress:
					logger.Debug().Msg(progress.FormatCleanProgress(p))
				}
			}
		}()
	}

	return func() {
		pr.Unsubscribe(ch)
		<-done

		if p := pr.GetScanProgress(); p != nil {
			log.Info().Msg(progress.FormatScanProgress(p))
		}
		if p := pr.GetCleanProgress(); p != nil {
			log.Info().Msg(progress.FormatCleanProgress(p))
		}
	}
}

func reportConfig(out io.Writer, c *config.Config) error {
	encoder := yaml.NewEncoder(out)
	defer encoder.Close()
	return encoder.Encode(c)
}
