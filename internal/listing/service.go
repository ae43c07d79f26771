// File: internal/listing/service.go
package listing

import (
	"context"
	"strings"
	"time"

	"carmatch_backend/internal/common"
	"carmatch_backend/internal/config"
	"carmatch_backend/internal/geo"
	"carmatch_backend/internal/platform/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SearchQuery is a browse request after binding.
type SearchQuery struct {
	Filter SearchFilter
	Sort   string
	Page   common.PaginationQuery
}

// Service defines the interface for want listing business logic.
type Service interface {
	CreateWantListing(ctx context.Context, userID uuid.UUID, req WantListingRequest) (*WantListing, error)
	UpdateWantListing(ctx context.Context, id, userID uuid.UUID, req WantListingRequest) (*WantListing, error)
	DeleteWantListing(ctx context.Context, id, userID uuid.UUID) error
	ArchiveWantListing(ctx context.Context, id, userID uuid.UUID) (*WantListing, error)
	GetWantListingByID(ctx context.Context, id uuid.UUID) (*WantListing, error)
	GetMyWantListings(ctx context.Context, userID uuid.UUID, page common.PaginationQuery) (common.Page[WantListing], error)
	SearchWantListings(ctx context.Context, query SearchQuery, callerID *uuid.UUID) (common.Page[SearchResult], error)
}

// ServiceImplementation implements the want listing Service.
type ServiceImplementation struct {
	repo     Repository
	filters  *FilterBuilder
	resolver geo.Resolver
	cfg      *config.Config
	logger   *zap.Logger
}

// NewService creates a new want listing service.
func NewService(repo Repository, filters *FilterBuilder, resolver geo.Resolver, cfg *config.Config, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:     repo,
		filters:  filters,
		resolver: resolver,
		cfg:      cfg,
		logger:   logger.Named("WantListingService"),
	}
}

// checkInvariants enforces the range invariants shared by create and update.
func checkInvariants(req WantListingRequest) error {
	details := map[string]string{}
	if req.YearMin > req.YearMax {
		details["yearMin"] = "yearMin must be less than or equal to yearMax."
	}
	if req.BudgetMin > req.BudgetMax {
		details["budgetMin"] = "budgetMin must be less than or equal to budgetMax."
	}
	if len(details) > 0 {
		return common.ErrConflict.WithDetails(details)
	}
	return nil
}

func applyRequest(w *WantListing, req WantListingRequest) {
	w.Title = strings.TrimSpace(req.Title)
	w.Make = strings.TrimSpace(req.Make)
	w.Model = strings.TrimSpace(req.Model)
	w.YearMin = req.YearMin
	w.YearMax = req.YearMax
	w.BudgetMin = req.BudgetMin
	w.BudgetMax = req.BudgetMax
	w.Zip = geo.NormalizeZip(req.Zip)
	w.RadiusMiles = req.RadiusMiles
	w.MileageMax = req.MileageMax
	w.Description = strings.TrimSpace(req.Description)
	w.Transmission = trimmedOrNil(req.Transmission)
	w.Drivetrain = trimmedOrNil(req.Drivetrain)
	w.Condition = trimmedOrNil(req.Condition)
	w.VehicleType = trimmedOrNil(req.VehicleType)

	mustHave, niceToHave := req.MustHaveFeatures, req.NiceToHaveFeatures
	if len(mustHave) == 0 && len(niceToHave) == 0 && len(req.Features) > 0 {
		niceToHave = req.Features
	}
	w.MustHaveFeatures = common.StringList(dedupe(mustHave))
	w.NiceToHaveFeatures = common.StringList(dedupe(niceToHave))
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (s *ServiceImplementation) CreateWantListing(ctx context.Context, userID uuid.UUID, req WantListingRequest) (*WantListing, error) {
	if err := checkInvariants(req); err != nil {
		return nil, err
	}
	w := &WantListing{UserID: userID, Status: StatusActive}
	applyRequest(w, req)

	if err := s.repo.Create(ctx, w); err != nil {
		s.logger.Error("Failed to create want listing", zap.String("userID", userID.String()), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Want listing created", zap.String("wantListingID", w.ID.String()), zap.String("userID", userID.String()))
	return w, nil
}

func (s *ServiceImplementation) UpdateWantListing(ctx context.Context, id, userID uuid.UUID, req WantListingRequest) (*WantListing, error) {
	if err := checkInvariants(req); err != nil {
		return nil, err
	}
	w := &WantListing{UserID: userID}
	w.ID = id
	applyRequest(w, req)

	affected, err := s.repo.Update(ctx, w)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, s.diagnose(ctx, id, userID)
	}
	return s.repo.FindByID(ctx, id)
}

func (s *ServiceImplementation) DeleteWantListing(ctx context.Context, id, userID uuid.UUID) error {
	affected, err := s.repo.SetStatus(ctx, id, userID, StatusDeleted)
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.diagnose(ctx, id, userID)
	}
	s.logger.Info("Want listing deleted", zap.String("wantListingID", id.String()))
	return nil
}

func (s *ServiceImplementation) ArchiveWantListing(ctx context.Context, id, userID uuid.UUID) (*WantListing, error) {
	affected, err := s.repo.SetStatus(ctx, id, userID, StatusArchived)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, s.diagnose(ctx, id, userID)
	}
	return s.repo.FindByID(ctx, id)
}

// diagnose explains why an owner-conditioned write touched no rows.
func (s *ServiceImplementation) diagnose(ctx context.Context, id, userID uuid.UUID) error {
	w, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if w.Status == StatusDeleted {
		return common.ErrNotFound.WithDetails("Want listing not found.")
	}
	if w.UserID != userID {
		return common.ErrForbidden.WithDetails("You do not own this want listing.")
	}
	return common.ErrConflict.WithDetails("Want listing changed concurrently; retry the request.")
}

func (s *ServiceImplementation) GetWantListingByID(ctx context.Context, id uuid.UUID) (*WantListing, error) {
	w, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.Status == StatusDeleted {
		return nil, common.ErrNotFound.WithDetails("Want listing not found.")
	}
	return w, nil
}

func (s *ServiceImplementation) GetMyWantListings(ctx context.Context, userID uuid.UUID, page common.PaginationQuery) (common.Page[WantListing], error) {
	page.Normalize(s.cfg.SearchMaxPageSize)
	items, total, err := s.repo.ListByUser(ctx, userID, page.Offset(), page.Limit)
	if err != nil {
		return common.Page[WantListing]{}, err
	}
	return common.NewPage(items, total, page.Page, page.Limit), nil
}

func (s *ServiceImplementation) SearchWantListings(ctx context.Context, query SearchQuery, callerID *uuid.UUID) (common.Page[SearchResult], error) {
	started := time.Now()
	if err := validateSearch(query); err != nil {
		return common.Page[SearchResult]{}, err
	}
	sort := query.Sort
	if sort == "" {
		sort = SortNewest
	}
	page := query.Page
	page.Normalize(s.cfg.SearchMaxPageSize)

	pred := s.filters.ForSearch(query.Filter)
	rows, total, err := s.repo.Search(ctx, pred, sort, page.Offset(), page.Limit, callerID)
	if err != nil {
		s.logger.Error("Want listing search failed", zap.Error(err))
		return common.Page[SearchResult]{}, err
	}

	if origin, ok := s.originOf(query.Filter); ok {
		AnnotateDistances(rows, origin, s.resolver)
	}
	metrics.ObserveQuery(metrics.QuerySearch, started, total)
	return common.NewPage(rows, total, page.Page, page.Limit), nil
}

func (s *ServiceImplementation) originOf(f SearchFilter) (geo.Coordinates, bool) {
	if strings.TrimSpace(f.OriginZip) == "" {
		return geo.Coordinates{}, false
	}
	return s.resolver.Resolve(f.OriginZip)
}

// AnnotateDistances fills DistanceMiles for rows whose zip resolves.
func AnnotateDistances(rows []SearchResult, origin geo.Coordinates, resolver geo.Resolver) {
	for i := range rows {
		if c, ok := resolver.Resolve(rows[i].Zip); ok {
			d := geo.Distance(origin, c)
			rows[i].DistanceMiles = &d
		}
	}
}

func validateSearch(q SearchQuery) error {
	details := map[string]string{}
	if q.Sort != "" && !ValidSort(q.Sort) {
		details["sort"] = "The sort field must be one of: newest, oldest, budget_asc, budget_desc."
	}
	hasZip := strings.TrimSpace(q.Filter.OriginZip) != ""
	hasRadius := q.Filter.RadiusMiles != nil
	if hasZip != hasRadius {
		details["radiusMiles"] = "zip and radiusMiles must be supplied together."
	}
	if hasRadius && (*q.Filter.RadiusMiles < 1 || *q.Filter.RadiusMiles > 500) {
		details["radiusMiles"] = "The radiusMiles field must be between 1 and 500."
	}
	if len(details) > 0 {
		return common.NewValidationAPIError(details)
	}
	return nil
}
