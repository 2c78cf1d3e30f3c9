package main

import (
	"fmt"
	"os"
	"path/filepath"

	"jokebox/internal/dataset"
	"jokebox/internal/storage"
	"jokebox/internal/version"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show workspace status",
	Long:  "Prints dataset and storage facts for the current workspace without starting the server",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadWorkspaceConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	fmt.Printf("Jokebox %s workspace status\n", version.Info())
	fmt.Printf("  Config:  %s\n", filepath.Join(workspaceDir, ".jokebox", "config.json"))
	fmt.Printf("  Source:  %s\n", cfg.Dataset.Source)

	datasetPath := filepath.Join(workspaceDir, cfg.Dataset.Path)
	if store, loadErr := dataset.Load(datasetPath, cfg.Dataset.Format); loadErr == nil {
		fmt.Printf("  Dataset: %s (%d jokes)\n", datasetPath, store.Len())
	} else if os.IsNotExist(unwrapAll(loadErr)) {
		fmt.Printf("  Dataset: %s (missing)\n", datasetPath)
	} else {
		fmt.Printf("  Dataset: %s (invalid: %v)\n", datasetPath, loadErr)
	}

	if !cfg.Storage.Enabled {
		fmt.Println("  Storage: disabled")
		return nil
	}

	db, err := storage.Open(workspaceDir, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	imported, err := storage.NewJokeStore(db).Count()
	if err != nil {
		return err
	}
	total, err := storage.NewCounterStore(db).TotalServed()
	if err != nil {
		return err
	}

	fmt.Printf("  Storage: %s (%d imported jokes, %d total serves)\n", db.Path(), imported, total)

	if top, err := storage.NewCounterStore(db).TopServed(5); err == nil && len(top) > 0 {
		fmt.Println("  Most served:")
		for _, sc := range top {
			fmt.Printf("    #%d: %d serves\n", sc.Position, sc.Count)
		}
	}

	return nil
}

// unwrapAll walks to the innermost error for os.IsNotExist checks
func unwrapAll(err error) error {
	for {
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		inner := u.Unwrap()
		if inner == nil {
			return err
		}
		err = inner
	}
}
