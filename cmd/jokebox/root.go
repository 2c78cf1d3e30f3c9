package main

import (
	"jokebox/internal/config"
	"jokebox/internal/logging"
	"jokebox/internal/version"

	"github.com/spf13/cobra"
)

var (
	// workspaceDir is the CLI --dir flag value: the directory holding the
	// dataset file and the .jokebox/ workspace
	workspaceDir string
)

var rootCmd = &cobra.Command{
	Use:   "jokebox",
	Short: "Jokebox - a joke lookup service",
	Long: `Jokebox serves jokes from an immutable, ordered dataset over HTTP.
The dataset is loaded once at startup from a static file (JSON, YAML, or TOML)
or from a local SQLite database populated by 'jokebox import'.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate(version.Full() + "\n")
	rootCmd.PersistentFlags().StringVar(&workspaceDir, "dir", ".",
		"Workspace directory containing the dataset and .jokebox/")
}

// loadWorkspaceConfig loads and validates the workspace configuration
func loadWorkspaceConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(workspaceDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds a logger from the workspace logging configuration
func newLogger(cfg *config.Config) *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.ParseFormat(cfg.Logging.Format),
		Level:  logging.ParseLevel(cfg.Logging.Level),
	})
}
