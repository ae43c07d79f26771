// File: internal/introduction/model.go
package introduction

import (
	"time"

	"carmatch_backend/internal/common"

	"github.com/google/uuid"
)

// Status of an introduction. Every status but pending is terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusExpired:
		return true
	}
	return false
}

const MaxMessageLength = 500

// Introduction pairs one vehicle with one want listing. The pair is unique
// across every status.
type Introduction struct {
	common.BaseModel
	VehicleListingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_introductions_vehicle_want,priority:1"`
	WantListingID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_introductions_vehicle_want,priority:2;index"`
	SellerID         uuid.UUID `gorm:"type:uuid;not null;index"`
	BuyerID          uuid.UUID `gorm:"type:uuid;not null;index"`
	Message          string    `gorm:"type:varchar(500);not null;default:''"`
	Status           Status    `gorm:"type:varchar(20);not null;default:'pending';index:idx_introductions_status_expires,priority:1"`
	ExpiresAt        time.Time `gorm:"not null;index:idx_introductions_status_expires,priority:2"`
}

// TableName specifies the table name for the Introduction model.
func (Introduction) TableName() string {
	return "introductions"
}

// View is an introduction joined with the display fields both parties see.
type View struct {
	Introduction
	VehicleMake       string `gorm:"column:vehicle_make"`
	VehicleModel      string `gorm:"column:vehicle_model"`
	VehicleYear       int    `gorm:"column:vehicle_year"`
	VehiclePrice      int    `gorm:"column:vehicle_price"`
	WantListingTitle  string `gorm:"column:want_listing_title"`
	SellerDisplayName string `gorm:"column:seller_display_name"`
	BuyerDisplayName  string `gorm:"column:buyer_display_name"`
}

// --- DTOs ---

// CreateIntroductionRequest is the body of POST /introductions.
type CreateIntroductionRequest struct {
	VehicleListingID uuid.UUID `json:"vehicleListingId" binding:"required"`
	WantListingID    uuid.UUID `json:"wantListingId" binding:"required"`
	Message          string    `json:"message" binding:"max=500"`
}

// IntroductionResponse defines the structure for introduction data sent in API responses.
type IntroductionResponse struct {
	ID               uuid.UUID `json:"id"`
	VehicleListingID uuid.UUID `json:"vehicleListingId"`
	WantListingID    uuid.UUID `json:"wantListingId"`
	SellerID         uuid.UUID `json:"sellerId"`
	BuyerID          uuid.UUID `json:"buyerId"`
	Message          string    `json:"message"`
	Status           Status    `json:"status"`
	ExpiresAt        time.Time `json:"expiresAt"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ViewResponse adds the joined display fields.
type ViewResponse struct {
	IntroductionResponse
	VehicleMake       string `json:"vehicleMake"`
	VehicleModel      string `json:"vehicleModel"`
	VehicleYear       int    `json:"vehicleYear"`
	VehiclePrice      int    `json:"vehiclePrice"`
	WantListingTitle  string `json:"wantListingTitle"`
	SellerDisplayName string `json:"sellerDisplayName"`
	BuyerDisplayName  string `json:"buyerDisplayName"`
}

func ToIntroductionResponse(i *Introduction) IntroductionResponse {
	return IntroductionResponse{
		ID:               i.ID,
		VehicleListingID: i.VehicleListingID,
		WantListingID:    i.WantListingID,
		SellerID:         i.SellerID,
		BuyerID:          i.BuyerID,
		Message:          i.Message,
		Status:           i.Status,
		ExpiresAt:        i.ExpiresAt,
		CreatedAt:        i.CreatedAt,
		UpdatedAt:        i.UpdatedAt,
	}
}

func ToViewResponse(v View) ViewResponse {
	return ViewResponse{
		IntroductionResponse: ToIntroductionResponse(&v.Introduction),
		VehicleMake:          v.VehicleMake,
		VehicleModel:         v.VehicleModel,
		VehicleYear:          v.VehicleYear,
		VehiclePrice:         v.VehiclePrice,
		WantListingTitle:     v.WantListingTitle,
		SellerDisplayName:    v.SellerDisplayName,
		BuyerDisplayName:     v.BuyerDisplayName,
	}
}
