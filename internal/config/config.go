// Package config loads application configuration from config files,
// environment variables, and .env files.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Default values applied when no other source provides one.
const (
	DefaultStorePath = "data/records"
	DefaultWorkers   = 4
)

// Config holds the application configuration loaded from all sources.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Output  string

	// Config file actually used, if any
	ConfigFile string

	// Store configuration
	StorePath string

	// Reconciliation configuration
	PrioritiesDir string
	Workers       int

	// Logging configuration
	LogLevel  string
	LogFormat string
}

// Load builds configuration in order of precedence: command-line flags
// (applied later by cobra), environment variables, .env files, the
// config file (~/.specfuse.yaml or ./.specfuse.yaml), then defaults.
func Load() (*Config, error) {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SPECFUSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".specfuse")
	}

	// Missing config file is fine; flags and env carry the run.
	_ = viper.ReadInConfig()

	cfg := &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no-color"),
		Output:  viper.GetString("output"),

		ConfigFile: viper.ConfigFileUsed(),

		StorePath:     viper.GetString("store_path"),
		PrioritiesDir: viper.GetString("priorities_dir"),
		Workers:       viper.GetInt("workers"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
	}

	if cfg.StorePath == "" {
		cfg.StorePath = DefaultStorePath
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}

	return cfg, nil
}

// ApplyFlags applies parsed command flags, which take precedence over
// every other source. changed reports whether a flag was set on the
// command line; an untouched boolean flag must not clobber a value
// loaded from the config file or environment.
func (c *Config) ApplyFlags(changed func(name string) bool, verbose, quiet, noColor bool, output string) {
	if changed("verbose") {
		c.Verbose = verbose
	}
	if changed("quiet") {
		c.Quiet = quiet
	}
	if changed("no-color") {
		c.NoColor = noColor
	}
	if output != "" {
		c.Output = output
	}
}

// loadEnvFiles loads .env files into the environment; .env.local
// overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
