// File: internal/vehicle/service.go
package vehicle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"carmatch_backend/internal/common"
	"carmatch_backend/internal/config"
	"carmatch_backend/internal/filestorage"
	"carmatch_backend/internal/geo"
	"carmatch_backend/internal/listing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Matcher finds want listings for a vehicle.
type Matcher interface {
	Match(ctx context.Context, v listing.VehicleCriteria, page common.PaginationQuery) (common.Page[listing.SearchResult], error)
}

// ImageUploader issues upload URLs for vehicle images.
type ImageUploader interface {
	PresignImageUpload(ctx context.Context, ownerID uuid.UUID, fileName, contentType string) (*filestorage.UploadTarget, error)
}

// Service defines the interface for vehicle listing business logic.
type Service interface {
	CreateVehicle(ctx context.Context, sellerID uuid.UUID, req VehicleRequest) (*VehicleListing, error)
	UpdateVehicle(ctx context.Context, id, sellerID uuid.UUID, req VehicleRequest) (*VehicleListing, error)
	DeleteVehicle(ctx context.Context, id, sellerID uuid.UUID) error
	GetVehicleByID(ctx context.Context, id uuid.UUID) (*VehicleListing, error)
	// GetOwnedVehicle returns an active vehicle only when sellerID owns it.
	GetOwnedVehicle(ctx context.Context, id, sellerID uuid.UUID) (*VehicleListing, error)
	GetMyVehicles(ctx context.Context, sellerID uuid.UUID, page common.PaginationQuery) (common.Page[VehicleListing], error)
	GetMatches(ctx context.Context, id, sellerID uuid.UUID, page common.PaginationQuery) (common.Page[listing.SearchResult], error)
	CreateImageUploadURL(ctx context.Context, sellerID uuid.UUID, req ImageUploadRequest) (*filestorage.UploadTarget, error)
}

// ServiceImplementation implements the vehicle Service.
type ServiceImplementation struct {
	repo     Repository
	matcher  Matcher
	uploader ImageUploader
	cfg      *config.Config
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new vehicle service.
func NewService(repo Repository, matcher Matcher, uploader ImageUploader, cfg *config.Config, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:     repo,
		matcher:  matcher,
		uploader: uploader,
		cfg:      cfg,
		logger:   logger.Named("VehicleService"),
		now:      time.Now,
	}
}

func (s *ServiceImplementation) validate(req VehicleRequest) error {
	details := map[string]string{}
	if maxYear := s.now().UTC().Year() + 1; req.Year < 1900 || req.Year > maxYear {
		details["year"] = fmt.Sprintf("The year field must be between 1900 and %d.", maxYear)
	}
	maxImages := s.cfg.VehicleMaxImages
	if maxImages < MinImages {
		maxImages = MinImages
	}
	if n := len(req.ImageRefs); n < MinImages || n > maxImages {
		details["imageRefs"] = fmt.Sprintf("Between %d and %d images are required.", MinImages, maxImages)
	}
	if len(details) > 0 {
		return common.NewValidationAPIError(details)
	}
	return nil
}

func applyRequest(v *VehicleListing, req VehicleRequest) {
	v.Make = strings.TrimSpace(req.Make)
	v.Model = strings.TrimSpace(req.Model)
	v.Year = req.Year
	v.Mileage = req.Mileage
	v.Price = req.Price
	v.Zip = geo.NormalizeZip(req.Zip)
	v.Description = strings.TrimSpace(req.Description)
	refs := make([]string, 0, len(req.ImageRefs))
	for _, r := range req.ImageRefs {
		refs = append(refs, strings.TrimSpace(r))
	}
	v.ImageRefs = common.StringList(refs)
	v.Transmission = trimmedOrNil(req.Transmission)
	v.Drivetrain = trimmedOrNil(req.Drivetrain)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func (s *ServiceImplementation) CreateVehicle(ctx context.Context, sellerID uuid.UUID, req VehicleRequest) (*VehicleListing, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	v := &VehicleListing{UserID: sellerID, Status: StatusActive}
	applyRequest(v, req)

	if err := s.repo.Create(ctx, v); err != nil {
		s.logger.Error("Failed to create vehicle listing", zap.String("userID", sellerID.String()), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Vehicle listing created", zap.String("vehicleID", v.ID.String()), zap.String("userID", sellerID.String()))
	return v, nil
}

func (s *ServiceImplementation) UpdateVehicle(ctx context.Context, id, sellerID uuid.UUID, req VehicleRequest) (*VehicleListing, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	v := &VehicleListing{UserID: sellerID}
	v.ID = id
	applyRequest(v, req)

	affected, err := s.repo.Update(ctx, v)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, s.diagnose(ctx, id, sellerID)
	}
	return s.repo.FindByID(ctx, id)
}

func (s *ServiceImplementation) DeleteVehicle(ctx context.Context, id, sellerID uuid.UUID) error {
	affected, err := s.repo.MarkDeleted(ctx, id, sellerID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.diagnose(ctx, id, sellerID)
	}
	s.logger.Info("Vehicle listing deleted", zap.String("vehicleID", id.String()))
	return nil
}

// diagnose explains why an owner-conditioned write touched no rows.
func (s *ServiceImplementation) diagnose(ctx context.Context, id, sellerID uuid.UUID) error {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if v.Status == StatusDeleted {
		return common.ErrNotFound.WithDetails("Vehicle listing not found.")
	}
	if v.UserID != sellerID {
		return common.ErrForbidden.WithDetails("You do not own this vehicle listing.")
	}
	return common.ErrConflict.WithDetails("Vehicle listing changed concurrently; retry the request.")
}

func (s *ServiceImplementation) GetVehicleByID(ctx context.Context, id uuid.UUID) (*VehicleListing, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status == StatusDeleted {
		return nil, common.ErrNotFound.WithDetails("Vehicle listing not found.")
	}
	return v, nil
}

func (s *ServiceImplementation) GetOwnedVehicle(ctx context.Context, id, sellerID uuid.UUID) (*VehicleListing, error) {
	v, err := s.GetVehicleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.UserID != sellerID {
		return nil, common.ErrForbidden.WithDetails("You do not own this vehicle listing.")
	}
	return v, nil
}

func (s *ServiceImplementation) GetMyVehicles(ctx context.Context, sellerID uuid.UUID, page common.PaginationQuery) (common.Page[VehicleListing], error) {
	page.Normalize(s.cfg.SearchMaxPageSize)
	items, total, err := s.repo.ListByUser(ctx, sellerID, page.Offset(), page.Limit)
	if err != nil {
		return common.Page[VehicleListing]{}, err
	}
	return common.NewPage(items, total, page.Page, page.Limit), nil
}

func (s *ServiceImplementation) GetMatches(ctx context.Context, id, sellerID uuid.UUID, page common.PaginationQuery) (common.Page[listing.SearchResult], error) {
	v, err := s.GetOwnedVehicle(ctx, id, sellerID)
	if err != nil {
		return common.Page[listing.SearchResult]{}, err
	}
	return s.matcher.Match(ctx, v.Criteria(), page)
}

func (s *ServiceImplementation) CreateImageUploadURL(ctx context.Context, sellerID uuid.UUID, req ImageUploadRequest) (*filestorage.UploadTarget, error) {
	return s.uploader.PresignImageUpload(ctx, sellerID, req.FileName, req.ContentType)
}
