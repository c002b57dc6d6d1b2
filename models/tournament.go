package models

import "time"

// TournamentStatus mirrors the status ENUM in the database.
type TournamentStatus string

const (
	StatusActive  TournamentStatus = "active"
	StatusPending TournamentStatus = "pending"
	StatusDeleted TournamentStatus = "deleted"
)

// Tournament is a scheduled billiards event. Addresses are denormalized onto
// the tournament row; venue_lat/venue_lng are legacy string coordinates kept
// for rows imported before the numeric latitude/longitude columns existed.
type Tournament struct {
	ID              string           `json:"id" db:"id"`
	UniqueNumber    int              `json:"id_unique_number" db:"id_unique_number"`
	Name            string           `json:"name" db:"name"`
	GameType        string           `json:"game_type" db:"game_type"`
	Format          string           `json:"format" db:"format"`
	TableSize       string           `json:"table_size" db:"table_size"`
	Equipment       string           `json:"equipment" db:"equipment"`
	CustomEquipment *string          `json:"custom_equipment,omitempty" db:"custom_equipment"`
	Description     *string          `json:"description,omitempty" db:"description"`
	StartDate       time.Time        `json:"start_date" db:"start_date"`
	StartTime       *string          `json:"start_time,omitempty" db:"start_time"`
	EntryFee        float64          `json:"entry_fee" db:"entry_fee"`
	GuaranteedGames int              `json:"guaranteed_games" db:"guaranteed_games"`
	FargoRating     *int             `json:"fargo_rating,omitempty" db:"fargo_rating"`
	ReportsToFargo  bool             `json:"reports_to_fargo" db:"reports_to_fargo"`
	IsHandicapped   bool             `json:"is_handicapped" db:"is_handicapped"`
	HasAddedMoney   bool             `json:"has_added_money" db:"has_added_money"`
	Status          TournamentStatus `json:"status" db:"status"`

	Address   *string  `json:"address,omitempty" db:"address"`
	ZipCode   *string  `json:"zip_code,omitempty" db:"zip_code"`
	Latitude  *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude *float64 `json:"longitude,omitempty" db:"longitude"`
	VenueLat  *string  `json:"venue_lat,omitempty" db:"venue_lat"`
	VenueLng  *string  `json:"venue_lng,omitempty" db:"venue_lng"`

	VenueID *string `json:"venue_id,omitempty" db:"venue_id"`
	Venue   *Venue  `json:"venue,omitempty" db:"-"`

	DirectorName  *string `json:"director_name,omitempty" db:"director_name"`
	DirectorPhone *string `json:"director_phone,omitempty" db:"director_phone"`

	FlyerKey *string `json:"-" db:"flyer_key"`
	FlyerURL *string `json:"flyer_url,omitempty" db:"-"`

	IsRecurring       bool    `json:"is_recurring" db:"is_recurring"`
	RecurringSeriesID *string `json:"recurring_series_id,omitempty" db:"recurring_series_id"`
	IsRecurringMaster bool    `json:"is_recurring_master" db:"is_recurring_master"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// DistanceMiles is populated by radius filtering, never stored.
	DistanceMiles *float64 `json:"distance_miles,omitempty" db:"-"`
}
