// File: internal/notifier/notifier.go
package notifier

import (
	"context"
	"strings"
	"time"

	"carmatch_backend/internal/platform/metrics"
	"carmatch_backend/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sendTimeout bounds one delivery attempt so a slow channel never stalls the caller.
const sendTimeout = 5 * time.Second

// RecipientLookup resolves a user to the address messages go to.
type RecipientLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Notifier sends best-effort messages about introductions.
type Notifier struct {
	users  RecipientLookup
	sender Sender
	logger *zap.Logger
}

func New(users RecipientLookup, sender Sender, logger *zap.Logger) *Notifier {
	return &Notifier{users: users, sender: sender, logger: logger.Named("Notifier")}
}

// Notify never fails the caller. Every problem is logged and counted.
func (n *Notifier) Notify(ctx context.Context, kind Kind, recipientID uuid.UUID, data Data) {
	log := n.logger.With(zap.String("kind", string(kind)), zap.String("recipientID", recipientID.String()))

	u, err := n.users.FindByID(ctx, recipientID)
	if err != nil {
		log.Warn("Notifier: recipient lookup failed", zap.Error(err))
		metrics.NotificationsSent.WithLabelValues(n.sender.Name(), "skipped").Inc()
		return
	}
	if u.Email == nil || strings.TrimSpace(*u.Email) == "" {
		log.Debug("Notifier: recipient has no email address")
		metrics.NotificationsSent.WithLabelValues(n.sender.Name(), "skipped").Inc()
		return
	}

	msg, err := render(kind, *u.Email, data)
	if err != nil {
		log.Error("Notifier: render failed", zap.Error(err))
		metrics.NotificationsSent.WithLabelValues(n.sender.Name(), "failed").Inc()
		return
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()
	if err := n.sender.Send(sendCtx, msg); err != nil {
		log.Warn("Notifier: send failed", zap.String("channel", n.sender.Name()), zap.Error(err))
		metrics.NotificationsSent.WithLabelValues(n.sender.Name(), "failed").Inc()
		return
	}
	metrics.NotificationsSent.WithLabelValues(n.sender.Name(), "sent").Inc()
}
