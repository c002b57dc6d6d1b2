package models

// Origin sources, in resolution precedence order.
const (
	OriginSourceZipCache     = "zip_cache"
	OriginSourceZipTable     = "zip_table"
	OriginSourceVenue        = "venue"
	OriginSourceGeocoded     = "geocoded"
	OriginSourceUserCoords   = "user_coords"
	OriginSourceDeviceCoords = "device_coords"
)

// LocationOrigin is the resolved center point of a radius search. It lives
// for a single filter evaluation; only ZIP-derived origins are cached.
type LocationOrigin struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Source    string  `json:"source"`
	Cached    bool    `json:"cached"`
}

// Coordinates is a bare lat/lng pair supplied by the client (user-chosen or
// device GPS).
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ZipCode is a row of the zip_codes lookup table, which doubles as a
// persistent geocode cache.
type ZipCode struct {
	Zip       string  `json:"zip" db:"zip"`
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
	City      *string `json:"city,omitempty" db:"city"`
	State     *string `json:"state,omitempty" db:"state"`
}
