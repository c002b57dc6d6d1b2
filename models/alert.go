package models

import (
	"database/sql"
	"time"
)

// Alert is a saved search for a user. The search_alerts table carries two
// generations of columns (keyword/game/zip/radius from the first schema,
// search_term/game_type/zip_code/radius_miles from the current one). The
// aliases are resolved exactly once at this boundary; business logic only
// ever sees the canonical struct.
type Alert struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	SearchTerm  string    `json:"search_term"`
	GameType    string    `json:"game_type"`
	ZipCode     string    `json:"zip_code"`
	RadiusMiles float64   `json:"radius_miles"`
	MaxEntryFee *float64  `json:"max_entry_fee,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// AlertRecord is the raw row shape, legacy columns included.
type AlertRecord struct {
	ID          string
	UserID      string
	SearchTerm  sql.NullString
	Keyword     sql.NullString // legacy alias of SearchTerm
	GameType    sql.NullString
	Game        sql.NullString // legacy alias of GameType
	ZipCode     sql.NullString
	Zip         sql.NullString // legacy alias of ZipCode
	RadiusMiles sql.NullFloat64
	Radius      sql.NullFloat64 // legacy alias of RadiusMiles
	MaxEntryFee sql.NullFloat64
	IsActive    bool
	CreatedAt   time.Time
}

// AlertFromRecord maps a stored row to the canonical alert, preferring the
// current columns and falling back to the legacy ones.
func AlertFromRecord(rec AlertRecord) Alert {
	a := Alert{
		ID:        rec.ID,
		UserID:    rec.UserID,
		IsActive:  rec.IsActive,
		CreatedAt: rec.CreatedAt,
	}
	a.SearchTerm = coalesceString(rec.SearchTerm, rec.Keyword)
	a.GameType = coalesceString(rec.GameType, rec.Game)
	a.ZipCode = coalesceString(rec.ZipCode, rec.Zip)
	a.RadiusMiles = coalesceFloat(rec.RadiusMiles, rec.Radius)
	if rec.MaxEntryFee.Valid {
		fee := rec.MaxEntryFee.Float64
		a.MaxEntryFee = &fee
	}
	return a
}

// AlertToRecord maps a canonical alert back to the row shape. Both column
// generations are written so that older clients reading the legacy columns
// keep working.
func AlertToRecord(a Alert) AlertRecord {
	rec := AlertRecord{
		ID:        a.ID,
		UserID:    a.UserID,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
	}
	rec.SearchTerm = nullString(a.SearchTerm)
	rec.Keyword = nullString(a.SearchTerm)
	rec.GameType = nullString(a.GameType)
	rec.Game = nullString(a.GameType)
	rec.ZipCode = nullString(a.ZipCode)
	rec.Zip = nullString(a.ZipCode)
	rec.RadiusMiles = nullFloat(a.RadiusMiles)
	rec.Radius = nullFloat(a.RadiusMiles)
	if a.MaxEntryFee != nil {
		rec.MaxEntryFee = sql.NullFloat64{Float64: *a.MaxEntryFee, Valid: true}
	}
	return rec
}

func coalesceString(vals ...sql.NullString) string {
	for _, v := range vals {
		if v.Valid && v.String != "" {
			return v.String
		}
	}
	return ""
}

func coalesceFloat(vals ...sql.NullFloat64) float64 {
	for _, v := range vals {
		if v.Valid {
			return v.Float64
		}
	}
	return 0
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: f != 0}
}
