package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/fenilsonani/stellar-clean/internal/cleaner"
	"github.com/fenilsonani/stellar-clean/internal/scanner"
	"github.com/fenilsonani/stellar-clean/internal/ui/styles"
	"github.com/fenilsonani/stellar-clean/pkg/utils"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatSummary OutputFormat = "summary"
)

// ParseFormat validates a format name
func ParseFormat(name string) (OutputFormat, error) {
	switch f := OutputFormat(name); f {
	case FormatTable, FormatJSON, FormatYAML, FormatSummary:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", name)
	}
}

// Reporter handles report generation
type Reporter struct {
	writer io.Writer
	format OutputFormat
	theme  styles.Theme
	now    func() time.Time
}

// New creates a new Reporter
func New(writer io.Writer, format OutputFormat) *Reporter {
	return &Reporter{
		writer: writer,
		format: format,
		theme:  styles.NewTheme(writer),
		now:    time.Now,
	}
}

// scanReport is the serialized form of a simulation
type scanReport struct {
	Timestamp          string               `json:"timestamp" yaml:"timestamp"`
	TotalSize          int64                `json:"total_size" yaml:"total_size"`
	TotalSizeFormatted string               `json:"total_size_formatted" yaml:"total_size_formatted"`
	Results            []scanner.ScanResult `json:"results" yaml:"results"`
}

// cleanReport is the serialized form of a clean run
type cleanReport struct {
	Timestamp          string                 `json:"timestamp" yaml:"timestamp"`
	Succeeded          int                    `json:"succeeded" yaml:"succeeded"`
	Failed             int                    `json:"failed" yaml:"failed"`
	Reclaimed          int64                  `json:"reclaimed" yaml:"reclaimed"`
	ReclaimedFormatted string                 `json:"reclaimed_formatted" yaml:"reclaimed_formatted"`
	Outcomes           []cleaner.CleanOutcome `json:"outcomes" yaml:"outcomes"`
}

// ReportScan renders simulation results and their total
func (r *Reporter) ReportScan(results scanner.ScanResults, total int64) error {
	switch r.format {
	case FormatTable:
		return r.scanTable(results, total)
	case FormatJSON:
		return r.encodeJSON(r.newScanReport(results, total))
	case FormatYAML:
		return r.encodeYAML(r.newScanReport(results, total))
	case FormatSummary:
		return r.scanSummary(results, total)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// ReportClean renders the outcomes of a clean run and the bytes it freed
func (r *Reporter) ReportClean(outcomes []cleaner.CleanOutcome, reclaimed int64) error {
	switch r.format {
	case FormatTable:
		return r.cleanTable(outcomes, reclaimed)
	case FormatJSON:
		return r.encodeJSON(r.newCleanReport(outcomes, reclaimed))
	case FormatYAML:
		return r.encodeYAML(r.newCleanReport(outcomes, reclaimed))
	case FormatSummary:
		return r.cleanSummary(outcomes, reclaimed)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

func (r *Reporter) newScanReport(results scanner.ScanResults, total int64) scanReport {
	if results == nil {
		results = scanner.ScanResults{}
	}
	return scanReport{
		Timestamp:          r.now().Format(time.RFC3339),
		TotalSize:          total,
		TotalSizeFormatted: utils.HumanSize(total),
		Results:            results,
	}
}

func (r *Reporter) newCleanReport(outcomes []cleaner.CleanOutcome, reclaimed int64) cleanReport {
	if outcomes == nil {
		outcomes = []cleaner.CleanOutcome{}
	}
	summary := cleaner.Summarize(outcomes)
	return cleanReport{
		Timestamp:          r.now().Format(time.RFC3339),
		Succeeded:          summary.Succeeded,
		Failed:             summary.Failed,
		Reclaimed:          reclaimed,
		ReclaimedFormatted: utils.HumanSize(reclaimed),
		Outcomes:           outcomes,
	}
}

// scanSummary prints per-target totals
func (r *Reporter) scanSummary(results scanner.ScanResults, total int64) error {
	t := r.theme
	fmt.Fprintln(r.writer, t.Title.Render("=== Scan Summary ==="))
	fmt.Fprintf(r.writer, "Reclaimable: %s\n", t.Size.Render(utils.HumanSize(total)))

	grouped := results.GroupByTarget()
	if len(grouped) == 0 {
		fmt.Fprintln(r.writer, t.Dim.Render("No paths matched the requested targets."))
		return nil
	}

	fmt.Fprintf(r.writer, "\nBreakdown by target:\n")
	for _, g := range grouped {
		fmt.Fprintf(r.writer, "  %s: %d paths, %s\n",
			t.Target.Render(g.Target), g.Paths, t.Size.Render(utils.HumanSize(g.Size)))
	}

	missing := 0
	for _, res := range results {
		if !res.Exists {
			missing++
		}
	}
	if missing > 0 {
		fmt.Fprintf(r.writer, "\n%s\n", t.Dim.Render(fmt.Sprintf("%d paths do not exist", missing)))
	}

	return nil
}

// scanTable prints one row per measured path
func (r *Reporter) scanTable(results scanner.ScanResults, total int64) error {
	t := r.theme
	fmt.Fprintln(r.writer, t.Bold.Render(fmt.Sprintf("%-16s | %-10s | %15s | %s", "Target", "Size", "Bytes", "Path")))
	fmt.Fprintln(r.writer, rule(100))

	for _, res := range results {
		size := utils.HumanSize(res.Size)
		if !res.Exists {
			size = "-"
		}
		fmt.Fprintf(r.writer, "%s | %s | %15s | %s\n",
			t.Target.Render(fmt.Sprintf("%-16s", res.Target)),
			t.Size.Render(fmt.Sprintf("%-10s", size)),
			humanize.Comma(res.Size),
			t.Path.Render(shortenPath(res.Path, 60)))
	}

	fmt.Fprintln(r.writer, rule(100))
	fmt.Fprintf(r.writer, "Total: %d paths, %s (%s bytes)\n",
		len(results), utils.HumanSize(total), humanize.Comma(total))

	return nil
}

// cleanSummary prints one line per outcome followed by the totals
func (r *Reporter) cleanSummary(outcomes []cleaner.CleanOutcome, reclaimed int64) error {
	t := r.theme
	fmt.Fprintln(r.writer, t.Title.Render("=== Clean Summary ==="))

	for _, o := range outcomes {
		mark := t.Success.Render("✓")
		if !o.Success {
			mark = t.Error.Render("✗")
		}
		line := fmt.Sprintf("  %s %s %s", mark, t.Target.Render(o.Target), t.Path.Render(o.Path))
		if o.Detail != "" {
			line += t.Dim.Render(": " + o.Detail)
		}
		fmt.Fprintln(r.writer, line)
	}

	summary := cleaner.Summarize(outcomes)
	fmt.Fprintf(r.writer, "\nSucceeded: %d, Failed: %d\n", summary.Succeeded, summary.Failed)
	fmt.Fprintf(r.writer, "Reclaimed: %s\n", t.Size.Render(utils.HumanSize(reclaimed)))

	if msg := cleaner.FormatErrorSummary(summary.Errors); msg != "" {
		fmt.Fprint(r.writer, t.Warning.Render(msg))
		for _, e := range summary.Errors {
			fmt.Fprintf(r.writer, "   %s\n", e.UserMessage())
		}
	}

	return nil
}

// cleanTable prints one row per outcome
func (r *Reporter) cleanTable(outcomes []cleaner.CleanOutcome, reclaimed int64) error {
	t := r.theme
	fmt.Fprintln(r.writer, t.Bold.Render(fmt.Sprintf("%-16s | %-6s | %-50s | %s", "Target", "Status", "Path", "Detail")))
	fmt.Fprintln(r.writer, rule(100))

	for _, o := range outcomes {
		status := t.Success.Render(fmt.Sprintf("%-6s", "ok"))
		if !o.Success {
			status = t.Error.Render(fmt.Sprintf("%-6s", "failed"))
		}
		fmt.Fprintf(r.writer, "%s | %s | %s | %s\n",
			t.Target.Render(fmt.Sprintf("%-16s", o.Target)),
			status,
			t.Path.Render(fmt.Sprintf("%-50s", shortenPath(o.Path, 50))),
			o.Detail)
	}

	summary := cleaner.Summarize(outcomes)
	fmt.Fprintln(r.writer, rule(100))
	fmt.Fprintf(r.writer, "Succeeded: %d, Failed: %d, Reclaimed: %s (%s bytes)\n",
		summary.Succeeded, summary.Failed, utils.HumanSize(reclaimed), humanize.Comma(reclaimed))

	return nil
}

func (r *Reporter) encodeJSON(report interface{}) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func (r *Reporter) encodeYAML(report interface{}) error {
	encoder := yaml.NewEncoder(r.writer)
	defer encoder.Close()
	return encoder.Encode(report)
}

// SaveScanToFile writes a scan report to a file
func SaveScanToFile(results scanner.ScanResults, total int64, path string, format OutputFormat) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	return New(file, format).ReportScan(results, total)
}

func rule(width int) string {
	b := make([]rune, width)
	for i := range b {
		b[i] = '─'
	}
	return string(b)
}

// shortenPath keeps the tail of long paths
func shortenPath(path string, max int) string {
	r := []rune(path)
	if len(r) <= max {
		return path
	}
	return "..." + string(r[len(r)-(max-3):])
}
