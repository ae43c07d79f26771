// File: internal/user/repository.go
package user

import (
	"context"
	"errors"
	"strings"

	"carmatch_backend/internal/common"
	"carmatch_backend/internal/platform/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the interface for user data operations.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// Upsert creates the profile or overwrites its email and display name.
	Upsert(ctx context.Context, user *User) error
}

type gormRepository struct {
	db    *gorm.DB
	retry *database.Retrier
}

// NewGORMRepository creates a new GORM user repository.
func NewGORMRepository(db *gorm.DB, retry *database.Retrier) Repository {
	return &gormRepository{db: db, retry: retry}
}

// FindByID retrieves a user by their ID.
func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var userModel User
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&userModel).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found with this ID.")
		}
		return nil, err
	}
	return &userModel, nil
}

func (r *gormRepository) Upsert(ctx context.Context, user *User) error {
	if user.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*user.Email))
		user.Email = &normalized
	}
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "display_name", "updated_at"}),
		}).Create(user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(err.Error(), "unique constraint") ||
			strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return common.ErrConflict.WithDetails("Email is already used by another profile.")
		}
		return err
	}
	return nil
}
