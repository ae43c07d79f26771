// File: internal/favorite/repository.go
package favorite

import (
	"context"
	"fmt"

	"carmatch_backend/internal/platform/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for favorites membership.
type Repository interface {
	// Add inserts the pair unless it is already present.
	Add(ctx context.Context, fav *Favorite) error
	Remove(ctx context.Context, userID, wantListingID uuid.UUID) error
	ListIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type gormRepository struct {
	db    *gorm.DB
	retry *database.Retrier
}

// NewGORMRepository creates a new GORM favorites repository.
func NewGORMRepository(db *gorm.DB, retry *database.Retrier) Repository {
	return &gormRepository{db: db, retry: retry}
}

func (r *gormRepository) Add(ctx context.Context, fav *Favorite) error {
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(fav).Error
	})
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

func (r *gormRepository) Remove(ctx context.Context, userID, wantListingID uuid.UUID) error {
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).
			Where("user_id = ? AND want_listing_id = ?", userID, wantListingID).
			Delete(&Favorite{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

func (r *gormRepository) ListIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		ids = nil
		return r.db.WithContext(ctx).Model(&Favorite{}).
			Where("user_id = ?", userID).
			Order("created_at DESC").
			Pluck("want_listing_id", &ids).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
