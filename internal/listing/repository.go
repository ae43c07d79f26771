// File: internal/listing/repository.go
package listing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carmatch_backend/internal/common"
	"carmatch_backend/internal/platform/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sort keys accepted by Search.
const (
	SortNewest     = "newest"
	SortOldest     = "oldest"
	SortBudgetAsc  = "budget_asc"
	SortBudgetDesc = "budget_desc"
)

var sortClauses = map[string]string{
	SortNewest:     "want_listings.created_at DESC",
	SortOldest:     "want_listings.created_at ASC",
	SortBudgetAsc:  "want_listings.budget_max ASC, want_listings.created_at DESC",
	SortBudgetDesc: "want_listings.budget_max DESC, want_listings.created_at DESC",
}

// ValidSort reports whether s is a known sort key.
func ValidSort(s string) bool {
	_, ok := sortClauses[s]
	return ok
}

// SearchResult is a want listing augmented for browse and match results.
type SearchResult struct {
	WantListing
	OwnerDisplayName string   `gorm:"column:owner_display_name"`
	IsFavorited      bool     `gorm:"column:is_favorited"`
	DistanceMiles    *float64 `gorm:"-"`
}

// Repository defines the interface for want listing data operations.
type Repository interface {
	Create(ctx context.Context, listing *WantListing) error
	FindByID(ctx context.Context, id uuid.UUID) (*WantListing, error)
	// Update writes every mutable column of an owned, non-deleted listing.
	Update(ctx context.Context, listing *WantListing) (int64, error)
	// SetStatus flips status on an owned, non-deleted listing.
	SetStatus(ctx context.Context, id, ownerID uuid.UUID, status WantListingStatus) (int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]WantListing, int64, error)
	// Search runs pred for both the count and the page. callerID, when set,
	// fills IsFavorited from that caller's favorites.
	Search(ctx context.Context, pred Predicate, sort string, offset, limit int, callerID *uuid.UUID) ([]SearchResult, int64, error)
}

type gormRepository struct {
	db    *gorm.DB
	retry *database.Retrier
}

// NewGORMRepository creates a new GORM want listing repository.
func NewGORMRepository(db *gorm.DB, retry *database.Retrier) Repository {
	return &gormRepository{db: db, retry: retry}
}

var updatableColumns = []string{
	"title", "make", "model", "year_min", "year_max", "budget_min", "budget_max",
	"zip", "radius_miles", "mileage_max", "description", "transmission", "drivetrain",
	"condition", "vehicle_type", "must_have_features", "nice_to_have_features", "updated_at",
}

// Create inserts a new want listing.
func (r *gormRepository) Create(ctx context.Context, listing *WantListing) error {
	if listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Create(listing).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create want listing: %w", err)
	}
	return nil
}

// FindByID retrieves a want listing by its ID, whatever its status.
func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*WantListing, error) {
	var listing WantListing
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).First(&listing, "want_listings.id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Want listing not found.")
		}
		return nil, err
	}
	return &listing, nil
}

func (r *gormRepository) Update(ctx context.Context, listing *WantListing) (int64, error) {
	listing.UpdatedAt = time.Now().UTC()
	var affected int64
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		res := r.db.WithContext(ctx).Model(&WantListing{}).
			Where("id = ? AND user_id = ? AND status <> ?", listing.ID, listing.UserID, StatusDeleted).
			Select(updatableColumns).
			Updates(listing)
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

func (r *gormRepository) SetStatus(ctx context.Context, id, ownerID uuid.UUID, status WantListingStatus) (int64, error) {
	var affected int64
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		res := r.db.WithContext(ctx).Model(&WantListing{}).
			Where("id = ? AND user_id = ? AND status <> ?", id, ownerID, StatusDeleted).
			Updates(map[string]interface{}{"status": status, "updated_at": time.Now().UTC()})
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

func (r *gormRepository) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]WantListing, int64, error) {
	var (
		listings []WantListing
		total    int64
	)
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		scope := func() *gorm.DB {
			return r.db.WithContext(ctx).Model(&WantListing{}).
				Where("user_id = ? AND status <> ?", userID, StatusDeleted)
		}
		if err := scope().Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count want listings: %w", err)
		}
		listings = nil
		return scope().Order("created_at DESC").Offset(offset).Limit(limit).Find(&listings).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (r *gormRepository) Search(ctx context.Context, pred Predicate, sort string, offset, limit int, callerID *uuid.UUID) ([]SearchResult, int64, error) {
	order, ok := sortClauses[sort]
	if !ok {
		order = sortClauses[SortNewest]
	}

	var (
		rows  []SearchResult
		total int64
	)
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		scope := func() *gorm.DB {
			return r.db.WithContext(ctx).Model(&WantListing{}).Where(pred.SQL, pred.Args...)
		}

		if err := scope().Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count want listings: %w", err)
		}

		query := scope().Joins("LEFT JOIN users ON users.id = want_listings.user_id")
		if callerID != nil {
			query = query.Select(
				"want_listings.*, COALESCE(users.display_name, '') AS owner_display_name, "+
					"EXISTS (SELECT 1 FROM favorites f WHERE f.want_listing_id = want_listings.id AND f.user_id = ?) AS is_favorited",
				*callerID,
			)
		} else {
			query = query.Select("want_listings.*, COALESCE(users.display_name, '') AS owner_display_name")
		}

		rows = nil
		return query.Order(order).Offset(offset).Limit(limit).Scan(&rows).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
