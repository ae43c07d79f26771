package listing

import (
	"context"
	"errors"
	"testing"

	"carmatch_backend/internal/common"
	"carmatch_backend/internal/config"
	"carmatch_backend/internal/geo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockRepository is a mock type for listing.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, listing *WantListing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*WantListing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WantListing), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, listing *WantListing) (int64, error) {
	args := m.Called(ctx, listing)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) SetStatus(ctx context.Context, id, ownerID uuid.UUID, status WantListingStatus) (int64, error) {
	args := m.Called(ctx, id, ownerID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]WantListing, int64, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]WantListing), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) Search(ctx context.Context, pred Predicate, sort string, offset, limit int, callerID *uuid.UUID) ([]SearchResult, int64, error) {
	args := m.Called(ctx, pred, sort, offset, limit, callerID)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]SearchResult), args.Get(1).(int64), args.Error(2)
}

func newTestService(repo Repository) *ServiceImplementation {
	resolver := geo.NewStaticResolver([]geo.ZipGeo{
		{Zip: "90210", Latitude: 34.0901, Longitude: -118.4065},
		{Zip: "90211", Latitude: 34.0650, Longitude: -118.3830},
	})
	cfg := &config.Config{SearchMaxPageSize: 50}
	return NewService(repo, NewFilterBuilder(resolver), resolver, cfg, zap.NewNop())
}

func validRequest() WantListingRequest {
	return WantListingRequest{
		Title:       "  Family SUV  ",
		Make:        "Honda",
		Model:       "CR-V",
		YearMin:     2020,
		YearMax:     2024,
		BudgetMin:   25000,
		BudgetMax:   35000,
		Zip:         "90210",
		RadiusMiles: 50,
		MileageMax:  50000,
	}
}

func TestCreateWantListing_Success(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	userID := uuid.New()

	req := validRequest()
	req.Features = []string{"Sunroof", "sunroof", " AWD "}

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(w *WantListing) bool {
		return w.UserID == userID && w.Status == StatusActive && w.Title == "Family SUV"
	})).Return(nil).Once()

	w, err := service.CreateWantListing(context.Background(), userID, req)

	require.NoError(t, err)
	assert.Equal(t, 2020, w.YearMin)
	assert.Equal(t, 35000, w.BudgetMax)
	assert.Empty(t, w.MustHaveFeatures)
	assert.Equal(t, []string{"Sunroof", "AWD"}, []string(w.NiceToHaveFeatures))
	mockRepo.AssertExpectations(t)
}

func TestCreateWantListing_RangeInvariants(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)

	req := validRequest()
	req.YearMin, req.YearMax = 2024, 2020
	req.BudgetMin, req.BudgetMax = 40000, 30000

	_, err := service.CreateWantListing(context.Background(), uuid.New(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConflict))
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	details := apiErr.Details.(map[string]string)
	assert.Contains(t, details, "yearMin")
	assert.Contains(t, details, "budgetMin")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateWantListing_NotOwner(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	id, owner, caller := uuid.New(), uuid.New(), uuid.New()

	existing := &WantListing{UserID: owner, Status: StatusActive}
	existing.ID = id

	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*listing.WantListing")).Return(int64(0), nil).Once()
	mockRepo.On("FindByID", mock.Anything, id).Return(existing, nil).Once()

	_, err := service.UpdateWantListing(context.Background(), id, caller, validRequest())

	assert.True(t, errors.Is(err, common.ErrForbidden))
	mockRepo.AssertExpectations(t)
}

func TestDeleteWantListing_AlreadyDeleted(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	id, owner := uuid.New(), uuid.New()

	existing := &WantListing{UserID: owner, Status: StatusDeleted}
	existing.ID = id

	mockRepo.On("SetStatus", mock.Anything, id, owner, StatusDeleted).Return(int64(0), nil).Once()
	mockRepo.On("FindByID", mock.Anything, id).Return(existing, nil).Once()

	err := service.DeleteWantListing(context.Background(), id, owner)

	assert.True(t, errors.Is(err, common.ErrNotFound))
	mockRepo.AssertExpectations(t)
}

func TestArchiveWantListing_Success(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	id, owner := uuid.New(), uuid.New()

	archived := &WantListing{UserID: owner, Status: StatusArchived}
	archived.ID = id

	mockRepo.On("SetStatus", mock.Anything, id, owner, StatusArchived).Return(int64(1), nil).Once()
	mockRepo.On("FindByID", mock.Anything, id).Return(archived, nil).Once()

	w, err := service.ArchiveWantListing(context.Background(), id, owner)

	require.NoError(t, err)
	assert.Equal(t, StatusArchived, w.Status)
}

func TestGetWantListingByID_HidesDeleted(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	id := uuid.New()

	mockRepo.On("FindByID", mock.Anything, id).Return(&WantListing{Status: StatusDeleted}, nil).Once()

	_, err := service.GetWantListingByID(context.Background(), id)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestSearchWantListings_ClampsLimitAndAnnotatesDistance(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	radius := 10

	row := SearchResult{WantListing: WantListing{Zip: "90211"}}
	mockRepo.On("Search", mock.Anything, mock.AnythingOfType("listing.Predicate"), SortNewest, 50, 50, (*uuid.UUID)(nil)).
		Return([]SearchResult{row}, int64(51), nil).Once()

	page, err := service.SearchWantListings(context.Background(), SearchQuery{
		Filter: SearchFilter{OriginZip: "90210", RadiusMiles: &radius},
		Page:   common.PaginationQuery{Page: 2, Limit: 500},
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(51), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Items[0].DistanceMiles)
	assert.InDelta(t, 2.1, *page.Items[0].DistanceMiles, 0.5)
	mockRepo.AssertExpectations(t)
}

func TestSearchWantListings_Validation(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	tooFar := 501

	tests := []struct {
		name  string
		query SearchQuery
		field string
	}{
		{"zip without radius", SearchQuery{Filter: SearchFilter{OriginZip: "90210"}}, "radiusMiles"},
		{"radius out of range", SearchQuery{Filter: SearchFilter{OriginZip: "90210", RadiusMiles: &tooFar}}, "radiusMiles"},
		{"unknown sort", SearchQuery{Sort: "price"}, "sort"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.SearchWantListings(context.Background(), tt.query, nil)
			apiErr, ok := common.IsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
			assert.Contains(t, apiErr.Details.(map[string]string), tt.field)
		})
	}
	mockRepo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
