// File: internal/geo/repository.go
package geo

import (
	"context"
	"fmt"

	"carmatch_backend/internal/platform/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists the zip reference table.
type Repository interface {
	All(ctx context.Context) ([]ZipGeo, error)
	// Seed inserts rows that are not present yet and returns how many were new.
	Seed(ctx context.Context, rows []ZipGeo, batchSize int) (int64, error)
}

type gormRepository struct {
	db    *gorm.DB
	retry *database.Retrier
}

func NewGORMRepository(db *gorm.DB, retry *database.Retrier) Repository {
	return &gormRepository{db: db, retry: retry}
}

func (r *gormRepository) All(ctx context.Context) ([]ZipGeo, error) {
	var rows []ZipGeo
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		rows = nil
		return r.db.WithContext(ctx).Order("zip").Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *gormRepository) Seed(ctx context.Context, rows []ZipGeo, batchSize int) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	var inserted int64
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]
		err := r.retry.Do(ctx, func(ctx context.Context) error {
			res := r.db.WithContext(ctx).
				Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "zip"}}, DoNothing: true}).
				Create(&batch)
			if res.Error != nil {
				return res.Error
			}
			inserted += res.RowsAffected
			return nil
		})
		if err != nil {
			return inserted, fmt.Errorf("seeding zip geo rows %d-%d: %w", start, end, err)
		}
	}
	return inserted, nil
}
