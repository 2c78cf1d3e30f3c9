package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"jokebox/internal/config"
	"jokebox/internal/errors"

	"github.com/spf13/cobra"
)

var (
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a Jokebox workspace",
	Long:  "Creates a .jokebox/ directory with default configuration and a starter dataset in the workspace directory",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Force reinitialization (removes existing .jokebox directory)")
	rootCmd.AddCommand(initCmd)
}

// seedJokes is the starter dataset written by `jokebox init`. Entries are
// opaque to the service; this shape is just a friendly default.
var seedJokes = []map[string]string{
	{"setup": "Why do programmers prefer dark mode?", "punchline": "Because light attracts bugs."},
	{"setup": "Why did the developer go broke?", "punchline": "Because they used up all their cache."},
	{"setup": "How many programmers does it take to change a light bulb?", "punchline": "None, that's a hardware problem."},
	{"setup": "Why do Java developers wear glasses?", "punchline": "Because they don't C#."},
	{"setup": "A SQL query walks into a bar, walks up to two tables and asks...", "punchline": "Can I join you?"},
	{"setup": "Why was the function sad after a successful first call?", "punchline": "It didn't get a callback."},
	{"setup": "What is a programmer's favourite hangout place?", "punchline": "The Foo Bar."},
	{"setup": "Why did the database administrator leave their spouse?", "punchline": "They had one-to-many relationships."},
}

func runInit(cmd *cobra.Command, args []string) error {
	jokeboxDir := filepath.Join(workspaceDir, ".jokebox")
	if _, statErr := os.Stat(jokeboxDir); statErr == nil {
		if !initForce {
			// Idempotent behavior: already initialized is success
			fmt.Println("Jokebox already initialized.")
			fmt.Printf("Configuration at: %s\n", filepath.Join(jokeboxDir, "config.json"))
			fmt.Println("\nRun 'jokebox init --force' to reinitialize.")
			return nil
		}
		if removeErr := os.RemoveAll(jokeboxDir); removeErr != nil {
			return errors.Wrap(errors.InternalError, "failed to remove existing .jokebox directory", removeErr)
		}
	}

	if mkdirErr := os.MkdirAll(jokeboxDir, 0755); mkdirErr != nil {
		return errors.Wrap(errors.InternalError, "failed to create .jokebox directory", mkdirErr)
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(workspaceDir); err != nil {
		return errors.Wrap(errors.InternalError, "failed to write config", err)
	}

	// Write the starter dataset unless one already exists
	datasetPath := filepath.Join(workspaceDir, cfg.Dataset.Path)
	if _, statErr := os.Stat(datasetPath); os.IsNotExist(statErr) {
		data, err := json.MarshalIndent(seedJokes, "", "  ")
		if err != nil {
			return errors.Wrap(errors.InternalError, "failed to encode starter dataset", err)
		}
		if err := os.WriteFile(datasetPath, data, 0644); err != nil {
			return errors.Wrap(errors.InternalError, "failed to write starter dataset", err)
		}
		fmt.Printf("Wrote starter dataset: %s (%d jokes)\n", datasetPath, len(seedJokes))
	}

	fmt.Println("Jokebox initialized.")
	fmt.Printf("Configuration at: %s\n", filepath.Join(jokeboxDir, "config.json"))
	fmt.Println("\nNext steps:")
	fmt.Println("  jokebox serve          # start the HTTP API")
	fmt.Println("  jokebox import <file>  # import a dataset into SQLite")
	return nil
}
