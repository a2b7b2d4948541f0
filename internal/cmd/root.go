// Package cmd implements the specfuse command-line interface.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/specfuse/specfuse/internal/config"
	"github.com/specfuse/specfuse/pkg/logging"
)

var (
	cfg        *config.Config
	configFile string

	flagVerbose bool
	flagQuiet   bool
	flagNoColor bool
	flagOutput  string
	flagStore   string

	// Version information set by main.
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "specfuse",
	Short: "Multi-source product record reconciliation",
	Long: `Specfuse merges per-source product data (marketplace scrapes,
internal CSV exports, PDF extractions, LLM normalization passes) into a
single reconciled record per product type and date, with per-field
provenance and normalization metadata.`,
}

// Execute runs the root command with signal-aware context.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRunE = setupCommand
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.specfuse.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "only log warnings and errors")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "output format: json or text")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "record store directory (default data/records)")

	cobra.CheckErr(viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")))
	cobra.CheckErr(viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet")))
	cobra.CheckErr(viper.BindPFlag("store_path", rootCmd.PersistentFlags().Lookup("store")))
}

// setupCommand loads configuration and wires logging before any
// subcommand runs.
func setupCommand(_ *cobra.Command, _ []string) error {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	}

	loaded, err := config.Load()
	if err != nil {
		return err
	}
	cfg = loaded
	cfg.ApplyFlags(rootCmd.PersistentFlags().Changed, flagVerbose, flagQuiet, flagNoColor, flagOutput)
	if flagStore != "" {
		cfg.StorePath = flagStore
	}

	configureLogging()
	return nil
}

func configureLogging() {
	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	if cfg.Quiet {
		level = zerolog.WarnLevel
	}
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		if parsed, err := zerolog.ParseLevel(envLevel); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "json" {
		logging.SetDefault(logging.NewJSON(os.Stderr).Level(level))
		return
	}
	if cfg.NoColor {
		os.Setenv("NO_COLOR", "1")
	}
	logging.SetDefault(logging.NewConsole().Level(level))
}
