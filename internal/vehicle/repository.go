// File: internal/vehicle/repository.go
package vehicle

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

// Repository defines the interface for vehicle listing data operations.
type Repository interface {
	Create(ctx context.Context, v *VehicleListing) error
	FindByID(ctx context.Context, id uuid.UUID) (*VehicleListing, error)
	// Update writes every mutable column of an owned, active vehicle.
	Update(ctx context.Context, v *VehicleListing) (int64, error)
	// MarkDeleted flips an owned, active vehicle to deleted.
	MarkDeleted(ctx context.Context, id, ownerID uuid.UUID) (int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]VehicleListing, int64, error)
}

type gormRepository struct {
	db    *gorm.DB
	retry *database.Retrier
}

// NewGORMRepository creates a new GORM vehicle repository.
func NewGORMRepository(db *gorm.DB, retry *database.Retrier) Repository {
	return &gormRepository{db: db, retry: retry}
}

var updatableColumns = []string{
	"make", "model", "year", "mileage", "price", "zip", "description",
	"image_refs", "transmission", "drivetrain", "updated_at",
}

func (r *gormRepository) Create(ctx context.Context, v *VehicleListing) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Create(v).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create vehicle listing: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*VehicleListing, error) {
	var v VehicleListing
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).First(&v, "vehicle_listings.id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Vehicle listing not found.")
		}
		return nil, err
	}
	return &v, nil
}

func (r *gormRepository) Update(ctx context.Context, v *VehicleListing) (int64, error) {
	v.UpdatedAt = time.Now().UTC()
	var affected int64
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		res := r.db.WithContext(ctx).Model(&VehicleListing{}).
			Where("id = ? AND user_id = ? AND status = ?", v.ID, v.UserID, StatusActive).
			Select(updatableColumns).
			Updates(v)
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

func (r *gormRepository) MarkDeleted(ctx context.Context, id, ownerID uuid.UUID) (int64, error) {
	var affected int64
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		res := r.db.WithContext(ctx).Model(&VehicleListing{}).
			Where("id = ? AND user_id = ? AND status = ?", id, ownerID, StatusActive).
			Updates(map[string]interface{}{"status": StatusDeleted, "updated_at": time.Now().UTC()})
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

func (r *gormRepository) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]VehicleListing, int64, error) {
	var (
		items []VehicleListing
		total int64
	)
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		scope := func() *gorm.DB {
			return r.db.WithContext(ctx).Model(&VehicleListing{}).
				Where("user_id = ? AND status = ?", userID, StatusActive)
		}
		if err := scope().Count(&total).Error; err != nil {
			return fmt.Errorf("failed to count vehicle listings: %w", err)
		}
		items = nil
		return scope().Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
