package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML configuration for importctl. Flags win
// over the file; the file wins over environment variables.
type fileConfig struct {
	DatabaseURL string `yaml:"database_url"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
}

var (
	cfgFile string
	dbURL   string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "importctl",
	Short: "Process sales transaction files against the import database",
	Long: `importctl runs the same import pipeline as the sales-import service,
directly against the database: it parses a tab-separated sales file,
validates every row, resolves purchasers, items and merchants to their
canonical rows and commits the transaction records atomically.

Useful for backfills and for reprocessing files without the HTTP layer.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "PostgreSQL connection string (overrides config and DATABASE_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveConfig merges flags, the optional YAML file and the environment
// into the effective CLI configuration.
func resolveConfig() (*fileConfig, error) {
	_ = godotenv.Load()

	cfg := &fileConfig{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    "info",
		LogFormat:   "text",
	}

	if cfgFile != "" {
		data, err := os.ReadFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("no database URL: set --db-url, database_url in the config file, or DATABASE_URL")
	}
	return cfg, nil
}
