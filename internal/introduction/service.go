// File: internal/introduction/service.go
package introduction

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"carmatch_backend/internal/common"
	"carmatch_backend/internal/config"
	"carmatch_backend/internal/listing"
	"carmatch_backend/internal/notification"
	"carmatch_backend/internal/notifier"
	"carmatch_backend/internal/platform/metrics"
	"carmatch_backend/internal/vehicle"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VehicleLookup resolves a vehicle the caller must own.
type VehicleLookup interface {
	GetOwnedVehicle(ctx context.Context, id, sellerID uuid.UUID) (*vehicle.VehicleListing, error)
}

// WantListingLookup reads a want listing in any status.
type WantListingLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*listing.WantListing, error)
}

// NotificationCreator appends in-app notifications.
type NotificationCreator interface {
	CreateNotification(ctx context.Context, userID uuid.UUID, notifType notification.NotificationType, message string, relatedID *uuid.UUID) (*notification.Notification, error)
}

// OutboundNotifier sends best-effort external messages.
type OutboundNotifier interface {
	Notify(ctx context.Context, kind notifier.Kind, recipientID uuid.UUID, data notifier.Data)
}

// Service defines the interface for the introduction lifecycle.
type Service interface {
	CreateIntroduction(ctx context.Context, sellerID uuid.UUID, req CreateIntroductionRequest) (*Introduction, error)
	AcceptIntroduction(ctx context.Context, id, callerID uuid.UUID) (*Introduction, error)
	RejectIntroduction(ctx context.Context, id, callerID uuid.UUID) (*Introduction, error)
	// ExpireOverdue marks every overdue pending introduction expired and
	// returns how many changed. Running it again changes nothing.
	ExpireOverdue(ctx context.Context) (int64, error)
	ListReceived(ctx context.Context, buyerID uuid.UUID, status string, page common.PaginationQuery) (common.Page[View], error)
	ListSent(ctx context.Context, sellerID uuid.UUID, status string, page common.PaginationQuery) (common.Page[View], error)
}

// ServiceImplementation implements the introduction Service.
type ServiceImplementation struct {
	repo          Repository
	vehicles      VehicleLookup
	wantListings  WantListingLookup
	notifications NotificationCreator
	notifier      OutboundNotifier
	cfg           *config.Config
	logger        *zap.Logger
	now           func() time.Time
}

// NewService creates a new introduction service.
func NewService(
	repo Repository,
	vehicles VehicleLookup,
	wantListings WantListingLookup,
	notifications NotificationCreator,
	outbound OutboundNotifier,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		repo:          repo,
		vehicles:      vehicles,
		wantListings:  wantListings,
		notifications: notifications,
		notifier:      outbound,
		cfg:           cfg,
		logger:        logger.Named("IntroductionService"),
		now:           time.Now,
	}
}

// WithClock replaces the time source used for expiry stamps and sweeps.
func (s *ServiceImplementation) WithClock(now func() time.Time) *ServiceImplementation {
	s.now = now
	return s
}

func vehicleSummary(year int, vehicleMake, model string) string {
	return strings.TrimSpace(fmt.Sprintf("%d %s %s", year, vehicleMake, model))
}

func (s *ServiceImplementation) CreateIntroduction(ctx context.Context, sellerID uuid.UUID, req CreateIntroductionRequest) (*Introduction, error) {
	message := strings.TrimSpace(req.Message)
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return nil, common.NewFieldValidationError("message", fmt.Sprintf("The message may not be longer than %d characters.", MaxMessageLength))
	}

	v, err := s.vehicles.GetOwnedVehicle(ctx, req.VehicleListingID, sellerID)
	if err != nil {
		return nil, err
	}
	w, err := s.wantListings.FindByID(ctx, req.WantListingID)
	if err != nil {
		return nil, err
	}
	switch {
	case w.Status == listing.StatusDeleted:
		return nil, common.ErrNotFound.WithDetails("Want listing not found.")
	case w.Status != listing.StatusActive:
		return nil, common.NewFieldValidationError("wantListingId", "The want listing is no longer active.")
	case w.UserID == sellerID:
		return nil, common.NewFieldValidationError("wantListingId", "You cannot introduce a vehicle to your own want listing.")
	}

	now := s.now().UTC()
	intro := &Introduction{
		VehicleListingID: v.ID,
		WantListingID:    w.ID,
		SellerID:         sellerID,
		BuyerID:          w.UserID,
		Message:          message,
		Status:           StatusPending,
		ExpiresAt:        now.Add(s.cfg.IntroductionTTL),
	}
	intro.CreatedAt = now
	intro.UpdatedAt = now

	inserted, err := s.repo.CreateIfAbsent(ctx, intro)
	if err != nil {
		s.logger.Error("Failed to create introduction", zap.String("vehicleID", v.ID.String()), zap.String("wantListingID", w.ID.String()), zap.Error(err))
		return nil, err
	}
	if !inserted {
		metrics.IntroductionEvents.WithLabelValues(metrics.EventIntroductionConflict).Inc()
		return nil, common.ErrConflict.WithDetails("This vehicle has already been introduced to this want listing.")
	}
	metrics.IntroductionEvents.WithLabelValues(metrics.EventIntroductionCreated).Inc()
	s.logger.Info("Introduction created",
		zap.String("introductionID", intro.ID.String()),
		zap.String("vehicleID", v.ID.String()),
		zap.String("wantListingID", w.ID.String()),
	)

	summary := vehicleSummary(v.Year, v.Make, v.Model)
	s.notifyInApp(ctx, w.UserID, notification.IntroductionReceived,
		fmt.Sprintf("A seller introduced a %s to your want listing \"%s\".", summary, w.Title), intro.ID)
	s.notifier.Notify(ctx, notifier.KindIntroductionReceived, w.UserID, notifier.Data{
		IntroductionID:   intro.ID.String(),
		VehicleSummary:   summary,
		WantListingTitle: w.Title,
		Message:          message,
	})
	return intro, nil
}

func (s *ServiceImplementation) AcceptIntroduction(ctx context.Context, id, callerID uuid.UUID) (*Introduction, error) {
	view, err := s.transition(ctx, id, callerID, StatusAccepted)
	if err != nil {
		return nil, err
	}
	metrics.IntroductionEvents.WithLabelValues(metrics.EventIntroductionAccepted).Inc()

	summary := vehicleSummary(view.VehicleYear, view.VehicleMake, view.VehicleModel)
	s.notifyInApp(ctx, view.SellerID, notification.IntroductionAccepted,
		fmt.Sprintf("Your %s introduction for \"%s\" was accepted.", summary, view.WantListingTitle), id)
	s.notifier.Notify(ctx, notifier.KindIntroductionAccepted, view.SellerID, notifier.Data{
		IntroductionID:   id.String(),
		VehicleSummary:   summary,
		WantListingTitle: view.WantListingTitle,
		CounterpartName:  view.BuyerDisplayName,
	})
	return &view.Introduction, nil
}

func (s *ServiceImplementation) RejectIntroduction(ctx context.Context, id, callerID uuid.UUID) (*Introduction, error) {
	view, err := s.transition(ctx, id, callerID, StatusRejected)
	if err != nil {
		return nil, err
	}
	metrics.IntroductionEvents.WithLabelValues(metrics.EventIntroductionRejected).Inc()

	summary := vehicleSummary(view.VehicleYear, view.VehicleMake, view.VehicleModel)
	s.notifyInApp(ctx, view.SellerID, notification.IntroductionRejected,
		fmt.Sprintf("Your %s introduction for \"%s\" was declined.", summary, view.WantListingTitle), id)
	return &view.Introduction, nil
}

// transition performs the conditional pending->to write and, when it touches
// nothing, explains why.
func (s *ServiceImplementation) transition(ctx context.Context, id, callerID uuid.UUID, to Status) (*View, error) {
	affected, err := s.repo.Transition(ctx, id, callerID, to)
	if err != nil {
		s.logger.Error("Introduction transition failed", zap.String("introductionID", id.String()), zap.String("to", string(to)), zap.Error(err))
		return nil, err
	}
	if affected == 0 {
		intro, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if intro.BuyerID != callerID {
			return nil, common.ErrForbidden.WithDetails("Only the want listing owner can respond to this introduction.")
		}
		metrics.IntroductionEvents.WithLabelValues(metrics.EventIntroductionConflict).Inc()
		return nil, common.ErrConflict.WithDetails(fmt.Sprintf("Introduction is already %s.", intro.Status))
	}
	s.logger.Info("Introduction transitioned", zap.String("introductionID", id.String()), zap.String("status", string(to)))
	return s.repo.FindView(ctx, id)
}

// notifyInApp records a notification without failing the caller; the
// transition it describes has already committed.
func (s *ServiceImplementation) notifyInApp(ctx context.Context, userID uuid.UUID, t notification.NotificationType, message string, relatedID uuid.UUID) {
	if _, err := s.notifications.CreateNotification(ctx, userID, t, message, &relatedID); err != nil {
		s.logger.Warn("Failed to record in-app notification",
			zap.String("userID", userID.String()),
			zap.String("type", string(t)),
			zap.Error(err),
		)
	}
}

func (s *ServiceImplementation) ExpireOverdue(ctx context.Context) (int64, error) {
	count, err := s.repo.ExpirePending(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		metrics.IntroductionEvents.WithLabelValues(metrics.EventIntroductionExpired).Add(float64(count))
		s.logger.Info("Expired overdue introductions", zap.Int64("count", count))
	}
	return count, nil
}

func parseStatusFilter(raw string) (*Status, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return nil, nil
	}
	st := Status(raw)
	if !st.Valid() {
		return nil, common.NewFieldValidationError("status", "The status field must be one of: pending, accepted, rejected, expired.")
	}
	return &st, nil
}

func (s *ServiceImplementation) ListReceived(ctx context.Context, buyerID uuid.UUID, status string, page common.PaginationQuery) (common.Page[View], error) {
	st, err := parseStatusFilter(status)
	if err != nil {
		return common.Page[View]{}, err
	}
	page.Normalize(s.cfg.SearchMaxPageSize)
	rows, total, err := s.repo.ListReceived(ctx, buyerID, st, page.Offset(), page.Limit)
	if err != nil {
		return common.Page[View]{}, err
	}
	return common.NewPage(rows, total, page.Page, page.Limit), nil
}

func (s *ServiceImplementation) ListSent(ctx context.Context, sellerID uuid.UUID, status string, page common.PaginationQuery) (common.Page[View], error) {
	st, err := parseStatusFilter(status)
	if err != nil {
		return common.Page[View]{}, err
	}
	page.Normalize(s.cfg.SearchMaxPageSize)
	rows, total, err := s.repo.ListSent(ctx, sellerID, st, page.Offset(), page.Limit)
	if err != nil {
		return common.Page[View]{}, err
	}
	return common.NewPage(rows, total, page.Page, page.Limit), nil
}
