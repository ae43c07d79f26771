// File: internal/testutil/db.go
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"carmatch_backend/internal/config"
	"carmatch_backend/internal/geo"
	"carmatch_backend/internal/migrations"
	"carmatch_backend/internal/platform/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with the full schema.
// The database is closed when the test ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.OpenSQLite(dsn, &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))
	t.Cleanup(func() { database.CloseGORMDB(db) })
	return db
}

// NewRetrier returns a single-attempt retrier for repository tests.
func NewRetrier() *database.Retrier {
	return database.NewRetrierWith(1, 0, zap.NewNop())
}

// SeedZips loads rows into zip_geos and returns a resolver over the same rows.
func SeedZips(t *testing.T, db *gorm.DB, rows ...geo.ZipGeo) *geo.StaticResolver {
	t.Helper()
	_, err := geo.NewGORMRepository(db, NewRetrier()).Seed(context.Background(), rows, 100)
	require.NoError(t, err)
	return geo.NewStaticResolver(rows)
}

// Config returns the settings services read, with production defaults.
func Config() *config.Config {
	return &config.Config{
		SearchMaxPageSize: 50,
		IntroductionTTL:   72 * time.Hour,
		VehicleMaxImages:  5,
		NotifierChannel:   "log",
	}
}
