// File: internal/listing/filter.go
package listing

import (
	"strings"

	"carmatch_backend/internal/geo"

	"github.com/google/uuid"
)

// SearchFilter is the sparse browse filter. Nil/empty fields impose no constraint.
type SearchFilter struct {
	Make         string
	Model        string
	YearMin      *int
	YearMax      *int
	BudgetMin    *int
	BudgetMax    *int
	MileageMax   *int
	Transmission string
	Drivetrain   string
	VehicleTypes []string
	Keyword      string
	OriginZip    string
	RadiusMiles  *int
}

// VehicleCriteria is the side of a vehicle the matching predicate needs.
type VehicleCriteria struct {
	VehicleID uuid.UUID
	Make      string
	Model     string
	Year      int
	Price     int
	Mileage   int
	Zip       string
}

// Predicate is a conjunctive SQL condition over want_listings with its bound
// parameters in placeholder order. Filter values never appear in SQL.
type Predicate struct {
	SQL  string
	Args []interface{}
}

// optionalPredicate contributes clause/args only when present.
type optionalPredicate struct {
	present bool
	clause  func() (string, []interface{})
}

// fold joins the present predicates with AND, keeping args parallel to placeholders.
func fold(specs []optionalPredicate) Predicate {
	var (
		clauses []string
		args    []interface{}
	)
	for _, spec := range specs {
		if !spec.present {
			continue
		}
		sql, a := spec.clause()
		clauses = append(clauses, "("+sql+")")
		args = append(args, a...)
	}
	if len(clauses) == 0 {
		return Predicate{SQL: "1 = 1"}
	}
	return Predicate{SQL: strings.Join(clauses, " AND "), Args: args}
}

const never = "1 = 0"

// FilterBuilder turns filters into predicates over active want listings.
type FilterBuilder struct {
	resolver geo.Resolver
}

func NewFilterBuilder(resolver geo.Resolver) *FilterBuilder {
	return &FilterBuilder{resolver: resolver}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func containsPattern(s string) string {
	return "%" + escapeLike(strings.ToLower(strings.TrimSpace(s))) + "%"
}

func always(sql string, args ...interface{}) func() (string, []interface{}) {
	return func() (string, []interface{}) { return sql, args }
}

func activeOnly() optionalPredicate {
	return optionalPredicate{present: true, clause: always("want_listings.status = ?", string(StatusActive))}
}

// ForSearch builds the browse predicate. Year and budget use overlap semantics;
// the radius belongs to the caller.
func (b *FilterBuilder) ForSearch(f SearchFilter) Predicate {
	lowerTypes := make([]string, 0, len(f.VehicleTypes))
	for _, t := range f.VehicleTypes {
		if t = strings.TrimSpace(t); t != "" {
			lowerTypes = append(lowerTypes, strings.ToLower(t))
		}
	}

	return fold([]optionalPredicate{
		activeOnly(),
		{
			present: strings.TrimSpace(f.Make) != "",
			clause:  func() (string, []interface{}) { return `LOWER(want_listings.make) LIKE ? ESCAPE '\'`, []interface{}{containsPattern(f.Make)} },
		},
		{
			present: strings.TrimSpace(f.Model) != "",
			clause:  func() (string, []interface{}) { return `LOWER(want_listings.model) LIKE ? ESCAPE '\'`, []interface{}{containsPattern(f.Model)} },
		},
		{
			present: f.YearMin != nil,
			clause:  func() (string, []interface{}) { return "want_listings.year_max >= ?", []interface{}{derefInt(f.YearMin)} },
		},
		{
			present: f.YearMax != nil,
			clause:  func() (string, []interface{}) { return "want_listings.year_min <= ?", []interface{}{derefInt(f.YearMax)} },
		},
		{
			present: f.BudgetMin != nil,
			clause:  func() (string, []interface{}) { return "want_listings.budget_max >= ?", []interface{}{derefInt(f.BudgetMin)} },
		},
		{
			present: f.BudgetMax != nil,
			clause:  func() (string, []interface{}) { return "want_listings.budget_min <= ?", []interface{}{derefInt(f.BudgetMax)} },
		},
		{
			present: f.MileageMax != nil,
			clause:  func() (string, []interface{}) { return "want_listings.mileage_max <= ?", []interface{}{derefInt(f.MileageMax)} },
		},
		{
			present: strings.TrimSpace(f.Transmission) != "",
			clause: func() (string, []interface{}) {
				return "LOWER(want_listings.transmission) = ?", []interface{}{strings.ToLower(strings.TrimSpace(f.Transmission))}
			},
		},
		{
			present: strings.TrimSpace(f.Drivetrain) != "",
			clause: func() (string, []interface{}) {
				return "LOWER(want_listings.drivetrain) = ?", []interface{}{strings.ToLower(strings.TrimSpace(f.Drivetrain))}
			},
		},
		{
			present: len(lowerTypes) > 0,
			clause:  func() (string, []interface{}) { return "LOWER(want_listings.vehicle_type) IN ?", []interface{}{lowerTypes} },
		},
		{
			present: strings.TrimSpace(f.Keyword) != "",
			clause: func() (string, []interface{}) {
				p := containsPattern(f.Keyword)
				return `LOWER(want_listings.title) LIKE ? ESCAPE '\' OR LOWER(want_listings.description) LIKE ? ESCAPE '\'`, []interface{}{p, p}
			},
		},
		{
			present: strings.TrimSpace(f.OriginZip) != "" && f.RadiusMiles != nil,
			clause: func() (string, []interface{}) {
				return b.withinRadius(f.OriginZip, "?", float64(derefInt(f.RadiusMiles))+geo.DistanceTolerance)
			},
		},
	})
}

// ForVehicle builds the inverted matching predicate: the vehicle must fall
// inside each listing's ranges and inside the listing's own radius, and the
// pair must not already have an introduction in any status.
func (b *FilterBuilder) ForVehicle(v VehicleCriteria) Predicate {
	return fold([]optionalPredicate{
		activeOnly(),
		{present: true, clause: always("LOWER(want_listings.make) = ?", strings.ToLower(strings.TrimSpace(v.Make)))},
		{present: true, clause: always("LOWER(want_listings.model) = ?", strings.ToLower(strings.TrimSpace(v.Model)))},
		{present: true, clause: always("want_listings.year_min <= ? AND want_listings.year_max >= ?", v.Year, v.Year)},
		{present: true, clause: always("want_listings.budget_min <= ? AND want_listings.budget_max >= ?", v.Price, v.Price)},
		{present: true, clause: always("want_listings.mileage_max >= ?", v.Mileage)},
		{
			present: true,
			clause: func() (string, []interface{}) {
				return b.withinRadius(v.Zip, "want_listings.radius_miles + ?", geo.DistanceTolerance)
			},
		},
		{
			present: v.VehicleID != uuid.Nil,
			clause: always(
				"NOT EXISTS (SELECT 1 FROM introductions i WHERE i.want_listing_id = want_listings.id AND i.vehicle_listing_id = ?)",
				v.VehicleID,
			),
		},
	})
}

// withinRadius compares the distance from originZip to each listing's zip
// against bound, an SQL expression with one trailing placeholder bound to
// boundArg. An unresolvable origin matches nothing; listing zips without a
// geo row drop out of the EXISTS.
func (b *FilterBuilder) withinRadius(originZip, bound string, boundArg interface{}) (string, []interface{}) {
	origin, ok := b.resolver.Resolve(originZip)
	if !ok {
		return never, nil
	}
	sql := "EXISTS (SELECT 1 FROM zip_geos zg WHERE zg.zip = want_listings.zip AND " +
		geo.DistanceSQL("zg.latitude", "zg.longitude") + " <= " + bound + ")"
	args := append(geo.DistanceArgs(origin), boundArg)
	return sql, args
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
