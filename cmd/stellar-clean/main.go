package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fenilsonani/stellar-clean/internal/cleaner"
	"github.com/fenilsonani/stellar-clean/internal/config"
	"github.com/fenilsonani/stellar-clean/internal/logging"
	"github.com/fenilsonani/stellar-clean/internal/platform"
	"github.com/fenilsonani/stellar-clean/internal/registry"
	"github.com/fenilsonani/stellar-clean/internal/reporter"
	"github.com/fenilsonani/stellar-clean/internal/scanner"
	"github.com/fenilsonani/stellar-clean/internal/ui/styles"
	"github.com/fenilsonani/stellar-clean/pkg/utils"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var (
	configPath    string
	verbosity     int
	includeSystem bool
	force         bool
	vacuumSize    string
	assumeYes     bool
	dryRun        bool
	outputFmt     string
	outputFile    string

	cfg *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stellar-clean",
	Short: "Reclaim disk space from caches, trash and logs",
	Long: `stellar-clean measures and empties well-known cache, trash and temporary
locations in your home directory and, on request, a few system locations.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded

		level := verbosity
		if level == 0 {
			level = logging.ParseLevel(cfg.LogLevel)
		}
		logging.Setup(level, cfg.LogFile)

		if platform.Detect() == platform.Unknown {
			log.Warn().Msg("Untested platform; target paths follow the Linux layout")
		}

		if unknown := cfg.UnknownTargets(); len(unknown) > 0 {
			log.Warn().Strs("targets", unknown).Msg("Config names unknown default targets; they will be skipped")
		}
		return nil
	},
}

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List cleanup targets and the paths behind them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		candidates, err := registry.GetCandidates()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		theme := styles.NewTheme(out)

		if info, err := platform.GetInfo(); err == nil {
			user := info.Username
			if info.IsRoot {
				user += " (root)"
			}
			fmt.Fprintln(out, theme.Dim.Render(fmt.Sprintf("Platform: %s, user: %s, home: %s", info.OS, user, info.HomeDir)))
			fmt.Fprintln(out)
		}

		printScope := func(title string, targets []registry.Target, paths map[registry.Target]registry.PathSet) {
			fmt.Fprintln(out, theme.Title.Render(title))
			for _, t := range targets {
				fmt.Fprintf(out, "  %s\n", theme.Target.Render(string(t)))
				if len(paths[t]) == 0 {
					fmt.Fprintf(out, "    %s\n", theme.Dim.Render("(handled by --vacuum-journal)"))
				}
				for _, p := range paths[t] {
					fmt.Fprintf(out, "    %s\n", theme.Path.Render(p))
				}
			}
		}

		printScope("User targets", candidates.UserTargets(), candidates.User)
		fmt.Fprintln(out)
		printScope("System targets (need --system)", candidates.SystemTargets(), candidates.System)
		return nil
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan [targets...]",
	Short: "Measure what a clean would reclaim",
	Long:  `Measures the paths of the given targets without changing anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyFlagOverrides(cmd)
		return runScan(cmd, args)
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean [targets...]",
	Short: "Empty or remove the paths of the given targets",
	Long: `Cleans the given targets. Directories are emptied in place unless --force
is set, in which case they are removed along with plain files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyFlagOverrides(cmd)
		if dryRun {
			return runScan(cmd, args)
		}
		return runClean(cmd, args)
	},
}

var usageCmd = &cobra.Command{
	Use:   "usage <path>...",
	Short: "Report the disk usage of arbitrary paths",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		theme := styles.NewTheme(out)

		var total int64
		for _, p := range args {
			size := scanner.DiskUsage(p)
			total += size
			fmt.Fprintf(out, "%10s  %s\n", theme.Size.Render(utils.HumanSize(size)), theme.Path.Render(p))
		}
		if len(args) > 1 {
			fmt.Fprintf(out, "%10s  %s\n", theme.Bold.Render(utils.HumanSize(total)), "total")
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display current configuration",
	Long:  `Shows the config file location and the effective configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, err := resolveConfigPath()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Config file: %s\n", cfgPath)
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			fmt.Fprintln(out, "Config file does not exist. Using default configuration.")
			fmt.Fprintln(out, "Run `stellar-clean config init` to create it.")
		}

		fmt.Fprintln(out)
		return reportConfig(out, cfg)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfgPath string
		var err error
		if configPath != "" {
			cfgPath = configPath
			if _, statErr := os.Stat(cfgPath); os.IsNotExist(statErr) {
				err = config.Save(config.GetDefault(), cfgPath)
			}
		} else {
			cfgPath, err = config.EnsureConfigExists()
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n", cfgPath)
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v, -vv, -vvv)")

	// Scan command flags
	scanCmd.Flags().BoolVar(&includeSystem, "system", false, "include system targets")
	scanCmd.Flags().StringVar(&outputFmt, "output", "", "output format (summary, table, json, yaml)")
	scanCmd.Flags().StringVar(&outputFile, "file", "", "save report to file")

	// Clean command flags
	cleanCmd.Flags().BoolVar(&includeSystem, "system", false, "include system targets")
	cleanCmd.Flags().BoolVar(&force, "force", false, "remove directories and files instead of emptying directories")
	cleanCmd.Flags().StringVar(&vacuumSize, "vacuum-journal", "", "shrink the system journal to SIZE (needs --system)")
	cleanCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
	cleanCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be cleaned without deleting anything")
	cleanCmd.Flags().StringVar(&outputFmt, "output", "", "output format (summary, table, json, yaml)")

	// Add commands
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(targetsCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(configCmd)
}

// applyFlagOverrides layers explicitly set flags over the config
func applyFlagOverrides(cmd *cobra.Command) {
	flags := cmd.Flags()
	if !flags.Changed("system") {
		includeSystem = cfg.IncludeSystem
	}
	if flags.Lookup("force") != nil && !flags.Changed("force") {
		force = cfg.Force
	}
	if flags.Lookup("vacuum-journal") != nil && !flags.Changed("vacuum-journal") {
		vacuumSize = cfg.VacuumJournalSize
	}
	if outputFmt == "" {
		outputFmt = cfg.OutputFormat
	}
}

func newCleaner() *cleaner.Cleaner {
	c := cleaner.New(nil)
	c.SetVacuumer(cleaner.NewVacuumer(cfg.JournalTool))
	for _, p := range cfg.ProtectedPaths {
		c.PathValidator().AddProtectedPath(p)
	}
	return c
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}

func loadConfig() (*config.Config, error) {
	cfgPath, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	return config.Load(cfgPath)
}

func parseOutput() (reporter.OutputFormat, error) {
	return reporter.ParseFormat(outputFmt)
}
