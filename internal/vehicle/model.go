// File: internal/vehicle/model.go
package vehicle

import (
	"time"

	"carmatch_backend/internal/common"
	"carmatch_backend/internal/listing"

	"github.com/google/uuid"
)

// VehicleStatus defines the possible statuses of a vehicle listing.
type VehicleStatus string

const (
	StatusActive  VehicleStatus = "active"
	StatusDeleted VehicleStatus = "deleted"
)

// MinImages is the fewest image refs a vehicle listing may carry. The upper
// bound comes from VEHICLE_MAX_IMAGES.
const MinImages = 3

// VehicleListing is a seller-authored record of one vehicle for sale. Price is whole dollars.
type VehicleListing struct {
	common.BaseModel
	UserID       uuid.UUID         `gorm:"type:uuid;not null;index"`
	Make         string            `gorm:"type:varchar(60);not null"`
	Model        string            `gorm:"type:varchar(60);not null"`
	Year         int               `gorm:"not null"`
	Mileage      int               `gorm:"not null"`
	Price        int               `gorm:"not null"`
	Zip          string            `gorm:"type:varchar(10);not null"`
	Description  string            `gorm:"type:text"`
	ImageRefs    common.StringList `gorm:"column:image_refs"`
	Transmission *string           `gorm:"type:varchar(20)"`
	Drivetrain   *string           `gorm:"type:varchar(20)"`
	Status       VehicleStatus     `gorm:"type:varchar(20);not null;default:'active';index"`
}

// TableName specifies the table name for the VehicleListing model.
func (VehicleListing) TableName() string {
	return "vehicle_listings"
}

// Criteria is the view of the vehicle the matching predicate uses.
func (v *VehicleListing) Criteria() listing.VehicleCriteria {
	return listing.VehicleCriteria{
		VehicleID: v.ID,
		Make:      v.Make,
		Model:     v.Model,
		Year:      v.Year,
		Price:     v.Price,
		Mileage:   v.Mileage,
		Zip:       v.Zip,
	}
}

// --- DTOs ---

// VehicleRequest is the body for both create and full update.
type VehicleRequest struct {
	Make         string   `json:"make" binding:"required,max=60"`
	Model        string   `json:"model" binding:"required,max=60"`
	Year         int      `json:"year" binding:"required,gte=1900"`
	Mileage      int      `json:"mileage" binding:"gte=0"`
	Price        int      `json:"price" binding:"required,gt=0"`
	Zip          string   `json:"zip" binding:"required,len=5,numeric"`
	Description  string   `json:"description" binding:"max=4000"`
	ImageRefs    []string `json:"imageRefs" binding:"required,min=3,dive,required,max=500"`
	Transmission *string  `json:"transmission,omitempty" binding:"omitempty,max=20"`
	Drivetrain   *string  `json:"drivetrain,omitempty" binding:"omitempty,max=20"`
}

// ImageUploadRequest asks for a presigned upload URL.
type ImageUploadRequest struct {
	FileName    string `json:"fileName" binding:"required,max=200"`
	ContentType string `json:"contentType" binding:"required"`
}

// VehicleResponse defines the structure for vehicle data sent in API responses.
type VehicleResponse struct {
	ID           uuid.UUID     `json:"id"`
	UserID       uuid.UUID     `json:"userId"`
	Make         string        `json:"make"`
	Model        string        `json:"model"`
	Year         int           `json:"year"`
	Mileage      int           `json:"mileage"`
	Price        int           `json:"price"`
	Zip          string        `json:"zip"`
	Description  string        `json:"description"`
	ImageRefs    []string      `json:"imageRefs"`
	Transmission *string       `json:"transmission,omitempty"`
	Drivetrain   *string       `json:"drivetrain,omitempty"`
	Status       VehicleStatus `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// ToVehicleResponse converts a VehicleListing model to its response DTO.
func ToVehicleResponse(v *VehicleListing) VehicleResponse {
	refs := []string(v.ImageRefs)
	if refs == nil {
		refs = []string{}
	}
	return VehicleResponse{
		ID:           v.ID,
		UserID:       v.UserID,
		Make:         v.Make,
		Model:        v.Model,
		Year:         v.Year,
		Mileage:      v.Mileage,
		Price:        v.Price,
		Zip:          v.Zip,
		Description:  v.Description,
		ImageRefs:    refs,
		Transmission: v.Transmission,
		Drivetrain:   v.Drivetrain,
		Status:       v.Status,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}
