// File: cmd/server/providers.go
package main

import (
	"context"
	"log"

	"carmatch_backend/internal/config"
	"carmatch_backend/internal/geo"
	"carmatch_backend/internal/migrations"
	"carmatch_backend/internal/platform/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func provideContext() context.Context {
	return context.Background()
}

// provideDatabase opens the store, migrates it when DB_AUTO_MIGRATE is set,
// and returns a cleanup that closes it and flushes the logger.
func provideDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewGORM(cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DBAutoMigrate {
		if err := migrations.Run(db); err != nil {
			database.CloseGORMDB(db)
			return nil, nil, err
		}
		logger.Info("Database schema migrated")
	}
	cleanup := func() {
		logger.Info("Executing cleanup tasks...")
		database.CloseGORMDB(db)
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
		log.Println("Cleanup finished.")
	}
	return db, cleanup, nil
}

func provideResolver(ctx context.Context, repo geo.Repository, logger *zap.Logger) (geo.Resolver, error) {
	return geo.LoadResolver(ctx, repo, logger)
}
