// File: internal/notification/service.go
package notification

import (
	"context"
	"time"

	"carmatch_backend/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the interface for notification business logic.
type Service interface {
	CreateNotification(ctx context.Context, userID uuid.UUID, notifType NotificationType, message string, relatedID *uuid.UUID) (*Notification, error)
	GetNotificationsForUser(ctx context.Context, userID uuid.UUID, page common.PaginationQuery) (common.Page[Notification], error)
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkNotificationAsRead(ctx context.Context, notificationID, userID uuid.UUID) error
	MarkAllUserNotificationsAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ServiceImplementation implements the notification Service.
type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new notification service.
func NewService(repo Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{repo: repo, logger: logger.Named("NotificationService")}
}

func (s *ServiceImplementation) CreateNotification(ctx context.Context, userID uuid.UUID, notifType NotificationType, message string, relatedID *uuid.UUID) (*Notification, error) {
	n := &Notification{
		UserID:    userID,
		Type:      notifType,
		Message:   message,
		RelatedID: relatedID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to create notification", zap.String("userID", userID.String()), zap.String("type", string(notifType)), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not create notification.")
	}
	return n, nil
}

func (s *ServiceImplementation) GetNotificationsForUser(ctx context.Context, userID uuid.UUID, page common.PaginationQuery) (common.Page[Notification], error) {
	page.Normalize(common.MaxPageSize)
	items, total, err := s.repo.GetByUserID(ctx, userID, page.Offset(), page.Limit)
	if err != nil {
		s.logger.Error("Failed to list notifications", zap.String("userID", userID.String()), zap.Error(err))
		return common.Page[Notification]{}, common.ErrInternalServer.WithDetails("Could not retrieve notifications.")
	}
	return common.NewPage(items, total, page.Page, page.Limit), nil
}

func (s *ServiceImplementation) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to count unread notifications", zap.String("userID", userID.String()), zap.Error(err))
		return 0, common.ErrInternalServer.WithDetails("Could not count notifications.")
	}
	return count, nil
}

// MarkNotificationAsRead is a no-op for entries owned by someone else or
// already read. It reports NotFound only when the id does not exist at all.
func (s *ServiceImplementation) MarkNotificationAsRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	affected, err := s.repo.MarkAsRead(ctx, notificationID, userID)
	if err != nil {
		s.logger.Error("Failed to mark notification as read", zap.String("notificationID", notificationID.String()), zap.Error(err))
		return common.ErrInternalServer.WithDetails("Could not update notification.")
	}
	if affected > 0 {
		return nil
	}
	exists, err := s.repo.Exists(ctx, notificationID)
	if err != nil {
		return common.ErrInternalServer.WithDetails("Could not update notification.")
	}
	if !exists {
		return common.ErrNotFound.WithDetails("Notification not found.")
	}
	return nil
}

func (s *ServiceImplementation) MarkAllUserNotificationsAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to mark all notifications as read", zap.String("userID", userID.String()), zap.Error(err))
		return 0, common.ErrInternalServer.WithDetails("Could not mark all notifications as read.")
	}
	return count, nil
}
