// File: internal/favorite/model.go
package favorite

import (
	"time"

	"github.com/google/uuid"
)

// Favorite is a user's bookmark on a want listing.
type Favorite struct {
	UserID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	WantListingID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt     time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for the Favorite model.
func (Favorite) TableName() string {
	return "favorites"
}

// ListResponse is the body of GET /favorites.
type ListResponse struct {
	WantListingIDs []uuid.UUID `json:"wantListingIds"`
}
