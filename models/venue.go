package models

import "time"

// Venue is a pool hall or other physical location. Coordinates are optional;
// rows without them fall back to geocoding when a search needs an origin.
type Venue struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Address    *string   `json:"address,omitempty" db:"address"`
	City       *string   `json:"city,omitempty" db:"city"`
	State      *string   `json:"state,omitempty" db:"state"`
	ZipCode    *string   `json:"zip_code,omitempty" db:"zip_code"`
	Latitude   *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude  *float64  `json:"longitude,omitempty" db:"longitude"`
	VenueLat   *string   `json:"venue_lat,omitempty" db:"venue_lat"`
	VenueLng   *string   `json:"venue_lng,omitempty" db:"venue_lng"`
	Phone      *string   `json:"phone,omitempty" db:"phone"`
	TableCount *int      `json:"table_count,omitempty" db:"table_count"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
