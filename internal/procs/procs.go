// Package procs lists running process names. It backs the advisory
// warning shown before browser caches are cleaned.
package procs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// Lister kinds accepted by New
const (
	KindAuto    = "auto"
	KindTable   = "table"
	KindCommand = "command"
)

// ProcessLister lists the names of currently running processes
type ProcessLister interface {
	ProcessNames(ctx context.Context) ([]string, error)
}

// TableLister reads the system process table directly
type TableLister struct{}

// ProcessNames returns the name of every process it can read. Processes
// that exit or deny access while being read are skipped.
func (TableLister) ProcessNames(ctx context.Context) ([]string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read process table: %w", err)
	}

	names := make([]string, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// CommandLister runs ps and parses one command name per line
type CommandLister struct {
	// Command defaults to "ps"
	Command string
}

// ProcessNames runs `ps -A -o comm=`
func (l CommandLister) ProcessNames(ctx context.Context) ([]string, error) {
	command := l.Command
	if command == "" {
		command = "ps"
	}

	cmd := exec.CommandContext(ctx, command, "-A", "-o", "comm=")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to list processes with %s: %w", command, err)
	}

	return parseNames(stdout.String()), nil
}

func parseNames(out string) []string {
	var names []string
	for _, line := range strings.Split(out, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// New returns the lister for kind. "auto" picks the table reader where the
// process table is supported and ps elsewhere.
func New(kind string) (ProcessLister, error) {
	switch kind {
	case KindTable:
		return TableLister{}, nil
	case KindCommand:
		return CommandLister{}, nil
	case KindAuto, "":
		switch runtime.GOOS {
		case "linux", "darwin", "windows", "freebsd":
			return TableLister{}, nil
		}
		return CommandLister{}, nil
	default:
		return nil, fmt.Errorf("unknown process lister %q (want auto, table or command)", kind)
	}
}

// browserNames are matched case-insensitively as substrings of process names
var browserNames = []string{"firefox", "chrome", "chromium", "brave", "google-chrome"}

// DetectRunningBrowsers returns the sorted browser names that appear in the
// running process list. Listing errors yield an empty result; the check is
// advisory and never blocks cleaning.
func DetectRunningBrowsers(ctx context.Context, lister ProcessLister) []string {
	if lister == nil {
		return nil
	}

	names, err := lister.ProcessNames(ctx)
	if err != nil {
		return nil
	}

	found := make(map[string]bool)
	for _, name := range names {
		lower := strings.ToLower(name)
		for _, browser := range browserNames {
			if strings.Contains(lower, browser) {
				found[browser] = true
			}
		}
	}

	result := make([]string, 0, len(found))
	for browser := range found {
		result = append(result, browser)
	}
	sort.Strings(result)
	return result
}
