// File: internal/listing/model.go
package listing

import (
	"strings"
	"time"

	"carmatch_backend/internal/common"

	"github.com/google/uuid"
)

// WantListingStatus defines the possible statuses of a want listing.
type WantListingStatus string

const (
	StatusActive   WantListingStatus = "active"
	StatusArchived WantListingStatus = "archived"
	StatusDeleted  WantListingStatus = "deleted"
)

// WantListing is a buyer-authored description of the vehicle they are looking for.
// Budgets are whole dollars.
type WantListing struct {
	common.BaseModel
	UserID             uuid.UUID         `gorm:"type:uuid;not null;index"`
	Title              string            `gorm:"type:varchar(150);not null"`
	Make               string            `gorm:"type:varchar(60);not null;index"`
	Model              string            `gorm:"type:varchar(60);not null"`
	YearMin            int               `gorm:"not null"`
	YearMax            int               `gorm:"not null"`
	BudgetMin          int               `gorm:"not null"`
	BudgetMax          int               `gorm:"not null"`
	Zip                string            `gorm:"type:varchar(10);not null;index"`
	RadiusMiles        int               `gorm:"not null"`
	MileageMax         int               `gorm:"not null"`
	Description        string            `gorm:"type:text"`
	Transmission       *string           `gorm:"type:varchar(20)"`
	Drivetrain         *string           `gorm:"type:varchar(20)"`
	Condition          *string           `gorm:"type:varchar(20)"`
	VehicleType        *string           `gorm:"type:varchar(30)"`
	MustHaveFeatures   common.StringList `gorm:"column:must_have_features"`
	NiceToHaveFeatures common.StringList `gorm:"column:nice_to_have_features"`
	Status             WantListingStatus `gorm:"type:varchar(20);not null;default:'active';index"`
}

// TableName specifies the table name for the WantListing model.
func (WantListing) TableName() string {
	return "want_listings"
}

// CombinedFeatures is the legacy single feature list: must-haves first,
// then nice-to-haves, without duplicates. It is never stored.
func (w *WantListing) CombinedFeatures() []string {
	seen := make(map[string]struct{}, len(w.MustHaveFeatures)+len(w.NiceToHaveFeatures))
	out := make([]string, 0, len(w.MustHaveFeatures)+len(w.NiceToHaveFeatures))
	for _, list := range [][]string{w.MustHaveFeatures, w.NiceToHaveFeatures} {
		for _, f := range list {
			key := strings.ToLower(f)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}

// --- DTOs ---

// WantListingRequest is the body for both create and full update.
// Features is the legacy combined list; it is only read when both explicit sets are empty.
type WantListingRequest struct {
	Title              string   `json:"title" binding:"required,min=3,max=150"`
	Make               string   `json:"make" binding:"required,max=60"`
	Model              string   `json:"model" binding:"required,max=60"`
	YearMin            int      `json:"yearMin" binding:"required,gte=1900,lte=2100"`
	YearMax            int      `json:"yearMax" binding:"required,gte=1900,lte=2100"`
	BudgetMin          int      `json:"budgetMin" binding:"gte=0"`
	BudgetMax          int      `json:"budgetMax" binding:"required,gt=0"`
	Zip                string   `json:"zip" binding:"required,len=5,numeric"`
	RadiusMiles        int      `json:"radiusMiles" binding:"required,min=1,max=500"`
	MileageMax         int      `json:"mileageMax" binding:"required,gt=0"`
	Description        string   `json:"description" binding:"max=2000"`
	Transmission       *string  `json:"transmission,omitempty" binding:"omitempty,max=20"`
	Drivetrain         *string  `json:"drivetrain,omitempty" binding:"omitempty,max=20"`
	Condition          *string  `json:"condition,omitempty" binding:"omitempty,max=20"`
	VehicleType        *string  `json:"vehicleType,omitempty" binding:"omitempty,max=30"`
	MustHaveFeatures   []string `json:"mustHaveFeatures,omitempty" binding:"omitempty,max=30,dive,min=1,max=60"`
	NiceToHaveFeatures []string `json:"niceToHaveFeatures,omitempty" binding:"omitempty,max=30,dive,min=1,max=60"`
	Features           []string `json:"features,omitempty" binding:"omitempty,max=30,dive,min=1,max=60"`
}

// WantListingResponse defines the structure for want listing data sent in API responses.
type WantListingResponse struct {
	ID                 uuid.UUID         `json:"id"`
	UserID             uuid.UUID         `json:"userId"`
	Title              string            `json:"title"`
	Make               string            `json:"make"`
	Model              string            `json:"model"`
	YearMin            int               `json:"yearMin"`
	YearMax            int               `json:"yearMax"`
	BudgetMin          int               `json:"budgetMin"`
	BudgetMax          int               `json:"budgetMax"`
	Zip                string            `json:"zip"`
	RadiusMiles        int               `json:"radiusMiles"`
	MileageMax         int               `json:"mileageMax"`
	Description        string            `json:"description"`
	Transmission       *string           `json:"transmission,omitempty"`
	Drivetrain         *string           `json:"drivetrain,omitempty"`
	Condition          *string           `json:"condition,omitempty"`
	VehicleType        *string           `json:"vehicleType,omitempty"`
	MustHaveFeatures   []string          `json:"mustHaveFeatures"`
	NiceToHaveFeatures []string          `json:"niceToHaveFeatures"`
	Features           []string          `json:"features"`
	Status             WantListingStatus `json:"status"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

// SearchResultResponse is one browse result.
type SearchResultResponse struct {
	WantListingResponse
	OwnerDisplayName string   `json:"ownerDisplayName"`
	IsFavorited      bool     `json:"isFavorited"`
	DistanceMiles    *float64 `json:"distanceMiles,omitempty"`
}

func nonNil(l []string) []string {
	if l == nil {
		return []string{}
	}
	return l
}

// ToWantListingResponse converts a WantListing model to its response DTO.
func ToWantListingResponse(w *WantListing) WantListingResponse {
	return WantListingResponse{
		ID:                 w.ID,
		UserID:             w.UserID,
		Title:              w.Title,
		Make:               w.Make,
		Model:              w.Model,
		YearMin:            w.YearMin,
		YearMax:            w.YearMax,
		BudgetMin:          w.BudgetMin,
		BudgetMax:          w.BudgetMax,
		Zip:                w.Zip,
		RadiusMiles:        w.RadiusMiles,
		MileageMax:         w.MileageMax,
		Description:        w.Description,
		Transmission:       w.Transmission,
		Drivetrain:         w.Drivetrain,
		Condition:          w.Condition,
		VehicleType:        w.VehicleType,
		MustHaveFeatures:   nonNil(w.MustHaveFeatures),
		NiceToHaveFeatures: nonNil(w.NiceToHaveFeatures),
		Features:           w.CombinedFeatures(),
		Status:             w.Status,
		CreatedAt:          w.CreatedAt,
		UpdatedAt:          w.UpdatedAt,
	}
}

// ToSearchResultResponse converts a SearchResult to its response DTO.
func ToSearchResultResponse(r SearchResult) SearchResultResponse {
	return SearchResultResponse{
		WantListingResponse: ToWantListingResponse(&r.WantListing),
		OwnerDisplayName:    r.OwnerDisplayName,
		IsFavorited:         r.IsFavorited,
		DistanceMiles:       r.DistanceMiles,
	}
}
