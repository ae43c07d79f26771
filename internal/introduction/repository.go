// File: internal/introduction/repository.go
package introduction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carmatch_backend/internal/common"
	"carmatch_backend/internal/platform/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for introduction data operations. Every
// write is a single conditional statement.
type Repository interface {
	// CreateIfAbsent inserts intro unless its (vehicle, want listing) pair
	// already exists in any status. It reports whether a row was inserted,
	// including by an earlier attempt whose reply was lost.
	CreateIfAbsent(ctx context.Context, intro *Introduction) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Introduction, error)
	FindView(ctx context.Context, id uuid.UUID) (*View, error)
	// Transition moves a pending introduction owned by buyerID to status.
	// A row no longer pending is left alone and zero is returned. A retried
	// attempt that finds the row already at status for buyerID counts as done.
	Transition(ctx context.Context, id, buyerID uuid.UUID, to Status) (int64, error)
	// ExpirePending marks every pending row with expires_at before now as expired.
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
	ListReceived(ctx context.Context, buyerID uuid.UUID, status *Status, offset, limit int) ([]View, int64, error)
	ListSent(ctx context.Context, sellerID uuid.UUID, status *Status, offset, limit int) ([]View, int64, error)
}

type gormRepository struct {
	db    *gorm.DB
	retry *database.Retrier
}

// NewGORMRepository creates a new GORM introduction repository.
func NewGORMRepository(db *gorm.DB, retry *database.Retrier) Repository {
	return &gormRepository{db: db, retry: retry}
}

func (r *gormRepository) CreateIfAbsent(ctx context.Context, intro *Introduction) (bool, error) {
	if intro.ID == uuid.Nil {
		intro.ID = uuid.New()
	}
	var affected int64
	attempt := 0
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			// The previous attempt may have committed before its reply was lost.
			var n int64
			if err := r.db.WithContext(ctx).Model(&Introduction{}).Where("id = ?", intro.ID).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				affected = 1
				return nil
			}
		}
		res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "vehicle_listing_id"}, {Name: "want_listing_id"}},
			DoNothing: true,
		}).Create(intro)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to create introduction: %w", err)
	}
	return affected > 0, nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Introduction, error) {
	var intro Introduction
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).First(&intro, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Introduction not found.")
		}
		return nil, err
	}
	return &intro, nil
}

func (r *gormRepository) Transition(ctx context.Context, id, buyerID uuid.UUID, to Status) (int64, error) {
	var affected int64
	attempt := 0
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			var current Introduction
			err := r.db.WithContext(ctx).First(&current, "id = ?", id).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err == nil && current.BuyerID == buyerID && current.Status == to {
				affected = 1
				return nil
			}
		}
		res := r.db.WithContext(ctx).Model(&Introduction{}).
			Where("id = ? AND buyer_id = ? AND status = ?", id, buyerID, StatusPending).
			Updates(map[string]interface{}{"status": to, "updated_at": time.Now().UTC()})
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

func (r *gormRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	var affected int64
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		res := r.db.WithContext(ctx).Model(&Introduction{}).
			Where("status = ? AND expires_at < ?", StatusPending, now.UTC()).
			Updates(map[string]interface{}{"status": StatusExpired, "updated_at": now.UTC()})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to expire introductions: %w", err)
	}
	return affected, nil
}

const viewColumns = "introductions.*, " +
	"v.make AS vehicle_make, v.model AS vehicle_model, v.year AS vehicle_year, v.price AS vehicle_price, " +
	"w.title AS want_listing_title, " +
	"COALESCE(s.display_name, '') AS seller_display_name, COALESCE(b.display_name, '') AS buyer_display_name"

// withView selects the joined display fields on top of q.
func withView(q *gorm.DB) *gorm.DB {
	return q.Select(viewColumns).
		Joins("JOIN vehicle_listings v ON v.id = introductions.vehicle_listing_id").
		Joins("JOIN want_listings w ON w.id = introductions.want_listing_id").
		Joins("LEFT JOIN users s ON s.id = introductions.seller_id").
		Joins("LEFT JOIN users b ON b.id = introductions.buyer_id")
}

func (r *gormRepository) FindView(ctx context.Context, id uuid.UUID) (*View, error) {
	var rows []View
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		rows = nil
		return withView(r.db.WithContext(ctx).Model(&Introduction{}).Where("introductions.id = ?", id)).
			Limit(1).Scan(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, common.ErrNotFound.WithDetails("Introduction not found.")
	}
	return &rows[0], nil
}

func (r *gormRepository) list(ctx context.Context, partyColumn string, partyID uuid.UUID, status *Status, offset, limit int) ([]View, int64, error) {
	var (
		rows  []View
		total int64
	)
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		scope := func() *gorm.DB {
			q := r.db.WithContext(ctx).Model(&Introduction{}).Where("introductions."+partyColumn+" = ?", partyID)
			if status != nil {
				q = q.Where("introductions.status = ?", *status)
			}
			return q
		}
		if err := scope().Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count introductions: %w", err)
		}
		rows = nil
		return withView(scope()).
			Order("introductions.created_at DESC").
			Offset(offset).Limit(limit).
			Scan(&rows).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *gormRepository) ListReceived(ctx context.Context, buyerID uuid.UUID, status *Status, offset, limit int) ([]View, int64, error) {
	return r.list(ctx, "buyer_id", buyerID, status, offset, limit)
}

func (r *gormRepository) ListSent(ctx context.Context, sellerID uuid.UUID, status *Status, offset, limit int) ([]View, int64, error) {
	return r.list(ctx, "seller_id", sellerID, status, offset, limit)
}
