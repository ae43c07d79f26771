// File: internal/user/service.go
package user

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the interface for user profile logic.
type Service interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*User, error)
	UpsertProfile(ctx context.Context, id uuid.UUID, req UpsertProfileRequest) (*User, error)
}

// ServiceImplementation implements the user Service.
type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new user service.
func NewService(repo Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{repo: repo, logger: logger}
}

func (s *ServiceImplementation) GetProfile(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ServiceImplementation) UpsertProfile(ctx context.Context, id uuid.UUID, req UpsertProfileRequest) (*User, error) {
	u := &User{DisplayName: strings.TrimSpace(req.DisplayName), Email: req.Email}
	u.ID = id
	if err := s.repo.Upsert(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("User profile saved", zap.String("userID", id.String()))
	return s.repo.FindByID(ctx, id)
}
