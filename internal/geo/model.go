// File: internal/geo/model.go
package geo

// ZipGeo is one row of the zip -> coordinate reference table.
type ZipGeo struct {
	Zip       string  `gorm:"type:varchar(10);primaryKey" json:"zip"`
	Latitude  float64 `gorm:"type:double precision;not null" json:"latitude"`
	Longitude float64 `gorm:"type:double precision;not null" json:"longitude"`
}

func (ZipGeo) TableName() string {
	return "zip_geos"
}

// Coordinates is a point in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (z ZipGeo) Coordinates() Coordinates {
	return Coordinates{Latitude: z.Latitude, Longitude: z.Longitude}
}
