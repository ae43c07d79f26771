// File: cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"log" // Standard log for critical startup/shutdown messages before/after zap is active
	"os"
	"os/signal"
	"syscall"
	"time"

	"carmatch_backend/internal/config"
	"carmatch_backend/internal/geo"
	"carmatch_backend/internal/migrations"
	"carmatch_backend/internal/platform/database"
	"carmatch_backend/internal/platform/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

// newRootCommand serves the API by default; seed-geo loads reference data.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "server",
		Short:         "CarMatch API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer()
		},
	}
	cmd.AddCommand(newSeedGeoCommand())
	return cmd
}

type seedGeoOptions struct {
	File      string
	BatchSize int
}

func newSeedGeoCommand() *cobra.Command {
	opts := &seedGeoOptions{}

	cmd := &cobra.Command{
		Use:   "seed-geo",
		Short: "Load the zip to coordinate reference table",
		Long: `Load the zip to coordinate reference table from a CSV of
zip,latitude,longitude rows. Zips already present are skipped, so the
command can be rerun.

Example:
  server seed-geo --file data/zips.csv --batch-size 1000`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration for seed: %w", err)
			}
			appLogger, err := logger.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize logger for seed: %w", err)
			}
			defer func() { _ = appLogger.Sync() }()

			path := opts.File
			if path == "" {
				path = cfg.ZipGeoDataPath
			}
			return runGeoSeed(cmd.Context(), cfg, appLogger, path, opts.BatchSize)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "CSV of zip,latitude,longitude rows (defaults to ZIP_GEO_DATA_PATH)")
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", 500, "rows per insert batch")

	return cmd
}

func startServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, server, cfg.ServerTimeout)
}

// lifecycle is the part of app.Server that serve drives.
type lifecycle interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// serve runs srv until ctx is done or Start returns, then shuts it down.
// A failed Start is returned after shutdown so deferred cleanup still runs.
func serve(ctx context.Context, srv lifecycle, timeout time.Duration) error {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	var startErr error
	select {
	case <-ctx.Done():
		log.Println("INFO: Received shutdown signal. Shutting down server...")
	case startErr = <-serverErr:
		if startErr != nil {
			log.Printf("ERROR: Server failed to start or crashed: %v", startErr)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), timeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
	if startErr != nil {
		return fmt.Errorf("server failed to start or crashed: %w", startErr)
	}
	log.Println("INFO: Application exiting.")
	return nil
}

// runGeoSeed loads the zip reference CSV into zip_geos. Rows already present
// are left untouched, so the command can be rerun.
func runGeoSeed(ctx context.Context, cfg *config.Config, logger *zap.Logger, path string, batchSize int) error {
	if path == "" {
		return fmt.Errorf("no CSV given: pass --file or set ZIP_GEO_DATA_PATH")
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := geo.ReadCSV(f)
	if err != nil {
		return err
	}
	logger.Info("Parsed zip geo CSV", zap.String("path", path), zap.Int("rows", len(rows)))

	db, err := database.NewGORM(cfg)
	if err != nil {
		return err
	}
	defer database.CloseGORMDB(db)

	if err := db.AutoMigrate(&geo.ZipGeo{}); err != nil {
		return fmt.Errorf("failed to migrate zip_geos: %w", err)
	}
	if cfg.DBAutoMigrate {
		if err := migrations.Run(db); err != nil {
			return err
		}
	}

	repo := geo.NewGORMRepository(db, database.NewRetrier(cfg, logger))
	inserted, err := repo.Seed(ctx, rows, batchSize)
	if err != nil {
		return err
	}
	logger.Info("Zip geo seed completed",
		zap.Int64("inserted", inserted),
		zap.Int("skipped_existing", len(rows)-int(inserted)),
	)
	return nil
}
