// File: internal/notification/model.go
package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType defines the type of notification.
type NotificationType string

const (
	IntroductionReceived NotificationType = "introduction_received"
	IntroductionAccepted NotificationType = "introduction_accepted"
	IntroductionRejected NotificationType = "introduction_rejected"
)

// Notification represents an in-app notification. Only IsRead ever changes.
type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index:idx_notification_user_status" json:"userId"`
	Type      NotificationType `gorm:"type:varchar(100);not null" json:"type"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	RelatedID *uuid.UUID       `gorm:"type:uuid" json:"relatedId,omitempty"`
	IsRead    bool             `gorm:"not null;default:false;index:idx_notification_user_status" json:"isRead"`
	CreatedAt time.Time        `gorm:"not null;index:idx_notification_user_status" json:"createdAt"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// UnreadCountResponse is the body of GET /notifications/unread-count.
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}
