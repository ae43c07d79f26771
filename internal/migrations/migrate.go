// File: internal/migrations/migrate.go
package migrations

import (
	"fmt"

	"carmatch_backend/internal/favorite"
	"carmatch_backend/internal/geo"
	"carmatch_backend/internal/introduction"
	"carmatch_backend/internal/listing"
	"carmatch_backend/internal/notification"
	"carmatch_backend/internal/user"
	"carmatch_backend/internal/vehicle"

	"gorm.io/gorm"
)

// Models lists every persisted type in dependency order.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&geo.ZipGeo{},
		&listing.WantListing{},
		&vehicle.VehicleListing{},
		&introduction.Introduction{},
		&notification.Notification{},
		&favorite.Favorite{},
	}
}

// Run creates or updates the schema, including the unique and composite
// indexes declared on the models.
func Run(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
