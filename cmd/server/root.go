package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oddbyte/opm-repo/internal/config"
	"github.com/oddbyte/opm-repo/internal/handler"
	"github.com/oddbyte/opm-repo/internal/logger"
	"github.com/oddbyte/opm-repo/internal/opm"
	"github.com/oddbyte/opm-repo/internal/service"
	"github.com/oddbyte/opm-repo/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "opm-repo",
		Short: "Odd Package Manager repository server",
		Long: `Serves OPM package metadata, package archives and the package list
from a package store directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the config file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	})
	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the package list of the configured store",
		RunE:  runList,
	})

	return root
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return err
	}
	return printCatalog(cmd.Context(), cmd.OutOrStdout(), cfg)
}

func printCatalog(ctx context.Context, w io.Writer, cfg *config.Config) error {
	catalog, err := opm.ScanCatalog(ctx, store.NewRepoFs(cfg.Storage.Path), cfg.Storage.PackagesDir)
	if err != nil {
		return fmt.Errorf("failed to read package store: %w", err)
	}
	if len(catalog) == 0 {
		return nil
	}
	_, err = fmt.Fprintln(w, catalog.List())
	return err
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.EnsureDirs(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	// Initialize logger
	log, err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	var stats handler.DownloadStats
	if cfg.Stats.Enabled {
		statsStore, err := store.NewSQLiteStore(cfg.StatsDBPath(), log)
		if err != nil {
			return fmt.Errorf("failed to open stats store: %w", err)
		}
		defer statsStore.Close()
		stats = statsStore
	}

	var mirror handler.Syncer
	mirrorService := service.NewMirrorService(cfg, log)
	if mirrorService.Enabled() {
		mirror = mirrorService
		if err := mirrorService.Sync(cmd.Context()); err != nil {
			log.Error("initial sync failed", zap.Error(err))
		}
	}

	api := handler.NewAPI(cfg, log, store.NewRepoFs(cfg.Storage.Path), stats, mirror)
	defer api.Close()

	// Create router
	r := chi.NewRouter()
	api.RegisterRoutes(r)

	// Create server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("starting server",
			zap.Int("port", cfg.Server.Port),
			zap.String("store", cfg.Storage.Path),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Start periodic sync
	stopSync := make(chan struct{})
	defer close(stopSync)
	if mirrorService.Enabled() {
		go func() {
			ticker := time.NewTicker(cfg.Mirror.Interval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					if err := mirrorService.Sync(context.Background()); err != nil {
						log.Error("periodic sync failed", zap.Error(err))
					} else {
						log.Info("periodic sync completed successfully")
					}
				case <-stopSync:
					return
				}
			}
		}()
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	log.Info("server exited properly")
	return nil
}
