package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"jokebox/internal/api"
	"jokebox/internal/auth"
	"jokebox/internal/config"
	"jokebox/internal/dataset"
	"jokebox/internal/storage"

	"github.com/spf13/cobra"
)

var (
	servePort int
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Jokebox HTTP API server",
	Long: `Start the Jokebox HTTP API server. The root path returns a random joke,
any numeric path returns the joke at that index, and /jokes, /health, /ready,
/status, and /metrics provide the operational surface.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadWorkspaceConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)

	host := cfg.Server.Host
	if serveHost != "" {
		host = serveHost
	}
	port := cfg.Server.Port
	if servePort != 0 {
		port = servePort
	}
	addr := fmt.Sprintf("%s:%d", host, port)

	// Open storage when enabled (serve counters, API keys, sqlite datasets)
	var db *storage.DB
	if cfg.Storage.Enabled {
		db, err = storage.Open(workspaceDir, logger)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	// Load the dataset once; /reload re-runs the same loader
	load := newDatasetLoader(cfg, db)
	store, err := load()
	if err != nil {
		return err
	}
	if store.Len() == 0 {
		logger.Warn("Dataset is empty; lookups will return 404 until a reload", nil)
	}

	deps := api.Deps{
		Store:  store,
		Reload: load,
	}
	if db != nil {
		deps.Counters = storage.NewCounterStore(db)
	}

	if cfg.Auth.Enabled {
		keysFile, err := auth.LoadKeysFile(filepath.Join(workspaceDir, ".jokebox", cfg.Auth.KeysFile))
		if err != nil {
			return err
		}
		manager, err := auth.NewManager(cfg.Auth, keysFile, db, logger)
		if err != nil {
			return err
		}

		// Reap idle rate-limit buckets for the life of the server
		cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
		defer cancelCleanup()
		manager.StartCleanup(cleanupCtx)

		deps.Auth = manager
	}

	server := api.NewServer(addr, deps, cfg, logger)

	// Setup graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting Jokebox HTTP API server", map[string]interface{}{
			"addr":  addr,
			"jokes": store.Len(),
		})
		fmt.Printf("Jokebox HTTP API server listening on http://%s\n", addr)
		fmt.Println("Press Ctrl+C to stop")
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error", map[string]interface{}{
				"error": err.Error(),
			})
			return err
		}
	case sig := <-shutdown:
		logger.Info("Received shutdown signal", map[string]interface{}{
			"signal": sig.String(),
		})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Error during shutdown", map[string]interface{}{
				"error": err.Error(),
			})
			return err
		}

		logger.Info("Server stopped gracefully", nil)
	}

	return nil
}

// newDatasetLoader returns the loader the server uses at startup and on
// every /reload, bound to the configured source.
func newDatasetLoader(cfg *config.Config, db *storage.DB) api.ReloadFunc {
	if cfg.Dataset.Source == "sqlite" {
		jokes := storage.NewJokeStore(db)
		return func() (*dataset.Store, error) {
			rows, err := jokes.LoadAll()
			if err != nil {
				return nil, err
			}
			return dataset.NewStore(rows), nil
		}
	}

	path := filepath.Join(workspaceDir, cfg.Dataset.Path)
	format := cfg.Dataset.Format
	return func() (*dataset.Store, error) {
		return dataset.Load(path, format)
	}
}
