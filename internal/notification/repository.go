// File: internal/notification/repository.go
package notification

import (
	"context"
	"fmt"

	"carmatch_backend/internal/platform/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	GetByUserID(ctx context.Context, userID uuid.UUID, offset, limit int) ([]Notification, int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	// MarkAsRead flips one unread notification owned by userID. It reports
	// the rows changed; zero covers already-read and foreign entries alike.
	MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) (int64, error)
	Exists(ctx context.Context, notificationID uuid.UUID) (bool, error)
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// GORMRepository implements the Repository interface using GORM.
type GORMRepository struct {
	db    *gorm.DB
	retry *database.Retrier
}

// NewGORMRepository creates a new GORM notification repository.
func NewGORMRepository(db *gorm.DB, retry *database.Retrier) Repository {
	return &GORMRepository{db: db, retry: retry}
}

// Create inserts a new notification into the database.
func (r *GORMRepository) Create(ctx context.Context, notification *Notification) error {
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Create(notification).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetByUserID retrieves a page of a user's notifications, newest first.
func (r *GORMRepository) GetByUserID(ctx context.Context, userID uuid.UUID, offset, limit int) ([]Notification, int64, error) {
	var (
		notifications []Notification
		total         int64
	)
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		scope := func() *gorm.DB {
			return r.db.WithContext(ctx).Model(&Notification{}).Where("user_id = ?", userID)
		}
		if err := scope().Count(&total).Error; err != nil {
			return fmt.Errorf("counting notifications for user %s failed: %w", userID, err)
		}
		notifications = nil
		return scope().Order("created_at DESC").Offset(offset).Limit(limit).Find(&notifications).Error
	})
	if err != nil {
		return nil, 0, fmt.Errorf("fetching notifications for user %s failed: %w", userID, err)
	}
	return notifications, total, nil
}

func (r *GORMRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Model(&Notification{}).
			Where("user_id = ? AND is_read = ?", userID, false).
			Count(&count).Error
	})
	return count, err
}

func (r *GORMRepository) MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) (int64, error) {
	var affected int64
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		res := r.db.WithContext(ctx).Model(&Notification{}).
			Where("id = ? AND user_id = ? AND is_read = ?", notificationID, userID, false).
			Update("is_read", true)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to mark notification %s as read for user %s: %w", notificationID, userID, err)
	}
	return affected, nil
}

func (r *GORMRepository) Exists(ctx context.Context, notificationID uuid.UUID) (bool, error) {
	var count int64
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Model(&Notification{}).Where("id = ?", notificationID).Count(&count).Error
	})
	return count > 0, err
}

// MarkAllAsRead marks all unread notifications for a user as read.
// It returns the count of notifications that were updated.
func (r *GORMRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	var affected int64
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		res := r.db.WithContext(ctx).Model(&Notification{}).
			Where("user_id = ? AND is_read = ?", userID, false).
			Updates(map[string]interface{}{"is_read": true})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read for user %s: %w", userID, err)
	}
	return affected, nil
}
