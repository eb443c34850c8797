package cleaner

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fenilsonani/stellar-clean/internal/logging"
	"github.com/fenilsonani/stellar-clean/internal/platform"
	"github.com/fenilsonani/stellar-clean/internal/registry"
)

// maxVacuumDetail bounds how much of the tool's output lands in an outcome
const maxVacuumDetail = 200

// Vacuumer shrinks the system log store through an external tool invoked
// as `<tool> --vacuum-size=<size>`
type Vacuumer struct {
	tool   string
	logger zerolog.Logger
}

// NewVacuumer creates a Vacuumer for tool; empty means journalctl
func NewVacuumer(tool string) *Vacuumer {
	if tool == "" {
		tool = platform.JournalTool
	}
	return &Vacuumer{
		tool:   tool,
		logger: logging.GetLogger("vacuum"),
	}
}

// Tool returns the command the vacuumer runs
func (v *Vacuumer) Tool() string {
	return v.tool
}

// Vacuum runs the tool with the given size bound, passed through as-is.
// It never returns an error: a failed or missing tool yields a failed
// outcome carrying the error text. On success the detail holds the first
// 200 characters of the tool's standard output.
func (v *Vacuumer) Vacuum(ctx context.Context, size string) CleanOutcome {
	outcome := CleanOutcome{
		Target: string(registry.Journal),
		Path:   v.tool,
	}

	args := []string{"--vacuum-size=" + size}
	v.logger.Debug().Str("command", v.tool).Strs("args", args).Msg("Executing command")

	cmd := exec.CommandContext(ctx, v.tool, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		outcome.Detail = err.Error()
		outcome.Err = CategorizeError(v.tool, err)
		v.logger.Warn().Err(err).Str("size", size).Msg("Journal vacuum failed")
		return outcome
	}

	outcome.Success = true
	outcome.Detail = truncateRunes(strings.ToValidUTF8(stdout.String(), ""), maxVacuumDetail)
	v.logger.Info().Str("size", size).Msg("Journal vacuumed")
	return outcome
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
