// File: internal/favorite/service.go
package favorite

import (
	"context"
	"time"

	"carmatch_backend/internal/common"
	"carmatch_backend/internal/listing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WantListingLookup reads a want listing in any status.
type WantListingLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*listing.WantListing, error)
}

// Service defines the interface for favorites.
type Service interface {
	AddFavorite(ctx context.Context, userID, wantListingID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, wantListingID uuid.UUID) error
	ListFavoriteIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// ServiceImplementation implements the favorites Service.
type ServiceImplementation struct {
	repo         Repository
	wantListings WantListingLookup
	logger       *zap.Logger
}

// NewService creates a new favorites service.
func NewService(repo Repository, wantListings WantListingLookup, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{repo: repo, wantListings: wantListings, logger: logger.Named("FavoriteService")}
}

// AddFavorite is idempotent: a second add of the same pair is absorbed.
func (s *ServiceImplementation) AddFavorite(ctx context.Context, userID, wantListingID uuid.UUID) error {
	w, err := s.wantListings.FindByID(ctx, wantListingID)
	if err != nil {
		return err
	}
	if w.Status == listing.StatusDeleted {
		return common.ErrNotFound.WithDetails("Want listing not found.")
	}
	return s.repo.Add(ctx, &Favorite{UserID: userID, WantListingID: wantListingID, CreatedAt: time.Now().UTC()})
}

// RemoveFavorite succeeds whether or not the pair was present.
func (s *ServiceImplementation) RemoveFavorite(ctx context.Context, userID, wantListingID uuid.UUID) error {
	return s.repo.Remove(ctx, userID, wantListingID)
}

func (s *ServiceImplementation) ListFavoriteIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := s.repo.ListIDs(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list favorites", zap.String("userID", userID.String()), zap.Error(err))
		return nil, err
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}
