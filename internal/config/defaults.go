package config

import (
	"github.com/fenilsonani/stellar-clean/internal/platform"
	"github.com/fenilsonani/stellar-clean/internal/procs"
	"github.com/fenilsonani/stellar-clean/internal/registry"
)

// GetDefault returns the default configuration
func GetDefault() *Config {
	return &Config{
		IncludeSystem:     false,
		Force:             false, // empty directories in place, keep files
		VacuumJournalSize: "",
		DefaultTargets: []string{
			string(registry.Trash),
			string(registry.Thumbnails),
			string(registry.PipCache),
		},
		JournalTool:         platform.JournalTool,
		ProcessLister:       procs.KindAuto,
		WarnRunningBrowsers: true,
		OutputFormat:        FormatSummary,
		LogLevel:            "warn",
		LogFile:             "",
		ProtectedPaths:      []string{},
	}
}
