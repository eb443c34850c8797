package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/fenilsonani/stellar-clean/internal/procs"
	"github.com/fenilsonani/stellar-clean/internal/registry"
)

// AppName names the config directory under XDG_CONFIG_HOME
const AppName = "stellar-clean"

// Output formats accepted by output_format
const (
	FormatSummary = "summary"
	FormatTable   = "table"
	FormatJSON    = "json"
	FormatYAML    = "yaml"
)

var outputFormats = []string{FormatSummary, FormatTable, FormatJSON, FormatYAML}

// Config represents the application configuration
type Config struct {
	IncludeSystem bool `yaml:"include_system"`
	Force         bool `yaml:"force"`
	// VacuumJournalSize is handed to the journal tool as --vacuum-size when
	// system targets are included. Empty skips the vacuum.
	VacuumJournalSize string `yaml:"vacuum_journal_size"`
	// DefaultTargets are cleaned when no targets are named on the command
	// line. Names the registry does not know are kept and resolve to nothing.
	DefaultTargets []string `yaml:"default_targets"`

	JournalTool         string `yaml:"journal_tool"`
	ProcessLister       string `yaml:"process_lister"` // auto, table or command
	WarnRunningBrowsers bool   `yaml:"warn_running_browsers"`

	OutputFormat string `yaml:"output_format"`
	LogLevel     string `yaml:"log_level"`
	LogFile      string `yaml:"log_file"`

	// ProtectedPaths are refused in addition to the built-in system list
	ProtectedPaths []string `yaml:"protected_paths"`
}

// Load loads configuration from a file. A missing file yields the defaults;
// keys absent from the file keep their default values.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefault(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := GetDefault()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save saves configuration to a file
func Save(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JournalTool == "" {
		return fmt.Errorf("journal_tool must not be empty")
	}

	switch c.ProcessLister {
	case procs.KindAuto, procs.KindTable, procs.KindCommand:
	default:
		return fmt.Errorf("process_lister must be one of auto, table, command: got %q", c.ProcessLister)
	}

	if !contains(outputFormats, c.OutputFormat) {
		return fmt.Errorf("output_format must be one of %v: got %q", outputFormats, c.OutputFormat)
	}

	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
		}
	}

	for _, path := range c.ProtectedPaths {
		if !filepath.IsAbs(path) {
			return fmt.Errorf("protected path must be absolute: %s", path)
		}
	}

	return nil
}

// UnknownTargets returns the default targets the registry does not know
func (c *Config) UnknownTargets() []string {
	var unknown []string
	for _, name := range c.DefaultTargets {
		if !registry.Target(name).IsKnown() {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetConfigPath returns $XDG_CONFIG_HOME/stellar-clean/config.yaml
func GetConfigPath() (string, error) {
	if xdg.ConfigHome == "" {
		return "", fmt.Errorf("failed to resolve config directory")
	}
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml"), nil
}

// EnsureConfigExists creates a default config file if it doesn't exist
func EnsureConfigExists() (string, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := Save(GetDefault(), configPath); err != nil {
			return "", err
		}
	}

	return configPath, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
