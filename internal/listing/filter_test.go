package listing

import (
	"strings"
	"testing"

	"carmatch_backend/internal/geo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func testFilterBuilder() *FilterBuilder {
	return NewFilterBuilder(geo.NewStaticResolver([]geo.ZipGeo{
		{Zip: "90210", Latitude: 34.0901, Longitude: -118.4065},
	}))
}

func placeholders(sql string) int {
	return strings.Count(sql, "?")
}

func TestForSearch_EmptyFilterOnlyRequiresActive(t *testing.T) {
	pred := testFilterBuilder().ForSearch(SearchFilter{})

	assert.Equal(t, "(want_listings.status = ?)", pred.SQL)
	assert.Equal(t, []interface{}{"active"}, pred.Args)
}

func TestForSearch_ArgsFollowPlaceholders(t *testing.T) {
	yearMin, budgetMax, radius := 2020, 30000, 25
	pred := testFilterBuilder().ForSearch(SearchFilter{
		Make:         "hon%da",
		YearMin:      &yearMin,
		BudgetMax:    &budgetMax,
		Keyword:      "clean",
		VehicleTypes: []string{" SUV", "", "Truck"},
		OriginZip:    "90210",
		RadiusMiles:  &radius,
	})

	// The vehicle type list binds to a single IN placeholder.
	assert.Equal(t, placeholders(pred.SQL), len(pred.Args))
	assert.Contains(t, pred.SQL, "want_listings.year_max >= ?")
	assert.Contains(t, pred.SQL, "want_listings.budget_min <= ?")
	assert.Contains(t, pred.Args, `%hon\%da%`)
	assert.Contains(t, pred.Args, []string{"suv", "truck"})
	assert.NotContains(t, pred.SQL, "hon")
}

func TestForSearch_UnknownOriginMatchesNothing(t *testing.T) {
	radius := 25
	pred := testFilterBuilder().ForSearch(SearchFilter{OriginZip: "00000", RadiusMiles: &radius})

	assert.Contains(t, pred.SQL, never)
}

func TestForVehicle_InvertedPredicate(t *testing.T) {
	vehicleID := uuid.New()
	pred := testFilterBuilder().ForVehicle(VehicleCriteria{
		VehicleID: vehicleID,
		Make:      " Honda ",
		Model:     "CR-V",
		Year:      2022,
		Price:     31000,
		Mileage:   28000,
		Zip:       "90210",
	})

	assert.Equal(t, placeholders(pred.SQL), len(pred.Args))
	assert.Contains(t, pred.SQL, "want_listings.year_min <= ? AND want_listings.year_max >= ?")
	assert.Contains(t, pred.SQL, "want_listings.radius_miles + ?")
	assert.Contains(t, pred.SQL, "NOT EXISTS (SELECT 1 FROM introductions i")
	assert.Contains(t, pred.Args, "honda")
	assert.Equal(t, vehicleID, pred.Args[len(pred.Args)-1])
}

func TestForVehicle_WithoutIDSkipsIntroductionCheck(t *testing.T) {
	pred := testFilterBuilder().ForVehicle(VehicleCriteria{Make: "Honda", Model: "CR-V", Zip: "90210"})

	assert.NotContains(t, pred.SQL, "introductions")
}
