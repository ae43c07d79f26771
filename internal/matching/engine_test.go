package matching_test

import (
	"context"
	"math"
	"testing"
	"time"

	"carmatch_backend/internal/common"
	"carmatch_backend/internal/geo"
	"carmatch_backend/internal/introduction"
	"carmatch_backend/internal/listing"
	"carmatch_backend/internal/matching"
	"carmatch_backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// latitudeAt returns the latitude the given number of miles due north of lat.
func latitudeAt(lat, miles float64) float64 {
	return lat + (miles/geo.EarthRadiusMiles)*180/math.Pi
}

var zips = []geo.ZipGeo{
	{Zip: "90210", Latitude: 34.0901, Longitude: -118.4065},
	{Zip: "90211", Latitude: 34.0650, Longitude: -118.3830},
	{Zip: "50000", Latitude: 40, Longitude: -100},
	{Zip: "50050", Latitude: latitudeAt(40, 50), Longitude: -100},
	{Zip: "50051", Latitude: latitudeAt(40, 50.01), Longitude: -100},
}

func newEngine(t *testing.T) (*matching.Engine, *gorm.DB) {
	db := testutil.NewDB(t)
	resolver := testutil.SeedZips(t, db, zips...)
	repo := listing.NewGORMRepository(db, testutil.NewRetrier())
	engine := matching.NewEngine(repo, listing.NewFilterBuilder(resolver), resolver, testutil.Config(), zap.NewNop())
	return engine, db
}

func crvWant(zip string) *listing.WantListing {
	return &listing.WantListing{
		UserID:      uuid.New(),
		Title:       "CR-V wanted",
		Make:        "Honda",
		Model:       "CR-V",
		YearMin:     2020,
		YearMax:     2024,
		BudgetMin:   25000,
		BudgetMax:   35000,
		MileageMax:  50000,
		Zip:         zip,
		RadiusMiles: 50,
		Status:      listing.StatusActive,
	}
}

func crvVehicle(zip string) listing.VehicleCriteria {
	return listing.VehicleCriteria{
		VehicleID: uuid.New(),
		Make:      "honda",
		Model:     "cr-v",
		Year:      2022,
		Price:     31000,
		Mileage:   28000,
		Zip:       zip,
	}
}

func ids(page common.Page[listing.SearchResult]) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(page.Items))
	for _, r := range page.Items {
		out = append(out, r.ID)
	}
	return out
}

func TestMatch_CompatibleListingIsReturned(t *testing.T) {
	engine, db := newEngine(t)
	want := crvWant("90210")
	require.NoError(t, db.Create(want).Error)

	page, err := engine.Match(context.Background(), crvVehicle("90211"), common.PaginationQuery{})

	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, []uuid.UUID{want.ID}, ids(page))
	require.NotNil(t, page.Items[0].DistanceMiles)
	assert.Less(t, *page.Items[0].DistanceMiles, 50.0)
}

func TestMatch_OutOfRangeFieldsExclude(t *testing.T) {
	engine, db := newEngine(t)
	require.NoError(t, db.Create(crvWant("90210")).Error)

	tests := []struct {
		name   string
		mutate func(v *listing.VehicleCriteria)
	}{
		{"year too new", func(v *listing.VehicleCriteria) { v.Year = 2025 }},
		{"price over budget", func(v *listing.VehicleCriteria) { v.Price = 35001 }},
		{"price under budget", func(v *listing.VehicleCriteria) { v.Price = 24999 }},
		{"too many miles", func(v *listing.VehicleCriteria) { v.Mileage = 50001 }},
		{"other model", func(v *listing.VehicleCriteria) { v.Model = "Pilot" }},
		{"unknown zip", func(v *listing.VehicleCriteria) { v.Zip = "99999" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := crvVehicle("90211")
			tt.mutate(&v)
			page, err := engine.Match(context.Background(), v, common.PaginationQuery{})
			require.NoError(t, err)
			assert.Zero(t, page.Total)
			assert.Empty(t, page.Items)
		})
	}
}

func TestMatch_RadiusBoundaryIsInclusive(t *testing.T) {
	engine, db := newEngine(t)
	atRadius := crvWant("50050")
	beyond := crvWant("50051")
	require.NoError(t, db.Create(atRadius).Error)
	require.NoError(t, db.Create(beyond).Error)

	page, err := engine.Match(context.Background(), crvVehicle("50000"), common.PaginationQuery{})

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{atRadius.ID}, ids(page))
}

func TestMatch_ExcludesListingsAlreadyIntroduced(t *testing.T) {
	engine, db := newEngine(t)
	introduced := crvWant("90210")
	fresh := crvWant("90210")
	require.NoError(t, db.Create(introduced).Error)
	require.NoError(t, db.Create(fresh).Error)

	v := crvVehicle("90211")
	intro := &introduction.Introduction{
		VehicleListingID: v.VehicleID,
		WantListingID:    introduced.ID,
		SellerID:         uuid.New(),
		BuyerID:          introduced.UserID,
		Status:           introduction.StatusRejected,
		ExpiresAt:        time.Now().UTC().Add(72 * time.Hour),
	}
	require.NoError(t, db.Create(intro).Error)

	page, err := engine.Match(context.Background(), v, common.PaginationQuery{})

	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, []uuid.UUID{fresh.ID}, ids(page))

	// A different vehicle is not affected by that introduction.
	page, err = engine.Match(context.Background(), crvVehicle("90211"), common.PaginationQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
}

func TestMatch_NewestFirstAndPaged(t *testing.T) {
	engine, db := newEngine(t)
	base := time.Now().UTC().Add(-time.Hour)
	var created []uuid.UUID
	for i := 0; i < 3; i++ {
		w := crvWant("90210")
		w.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.Create(w).Error)
		created = append(created, w.ID)
	}

	page, err := engine.Match(context.Background(), crvVehicle("90211"), common.PaginationQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, []uuid.UUID{created[2], created[1]}, ids(page))

	page, err = engine.Match(context.Background(), crvVehicle("90211"), common.PaginationQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{created[0]}, ids(page))
}
