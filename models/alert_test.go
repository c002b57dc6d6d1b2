package models

import (
	"database/sql"
	"testing"
)

func TestAlertFromRecordPrefersCurrentColumns(t *testing.T) {
	rec := AlertRecord{
		ID:          "a-1",
		UserID:      "u-1",
		SearchTerm:  sql.NullString{String: "open", Valid: true},
		Keyword:     sql.NullString{String: "stale keyword", Valid: true},
		GameType:    sql.NullString{String: "9-ball", Valid: true},
		Game:        sql.NullString{String: "8-ball", Valid: true},
		ZipCode:     sql.NullString{String: "85051", Valid: true},
		Zip:         sql.NullString{String: "00000", Valid: true},
		RadiusMiles: sql.NullFloat64{Float64: 25, Valid: true},
		Radius:      sql.NullFloat64{Float64: 99, Valid: true},
		IsActive:    true,
	}

	a := AlertFromRecord(rec)
	if a.SearchTerm != "open" || a.GameType != "9-ball" || a.ZipCode != "85051" || a.RadiusMiles != 25 {
		t.Fatalf("current columns must win: %+v", a)
	}
}

func TestAlertFromRecordFallsBackToLegacyColumns(t *testing.T) {
	rec := AlertRecord{
		ID:       "a-2",
		UserID:   "u-1",
		Keyword:  sql.NullString{String: "bar box", Valid: true},
		Game:     sql.NullString{String: "8-ball", Valid: true},
		Zip:      sql.NullString{String: "85004", Valid: true},
		Radius:   sql.NullFloat64{Float64: 10, Valid: true},
		IsActive: true,
	}

	a := AlertFromRecord(rec)
	if a.SearchTerm != "bar box" || a.GameType != "8-ball" || a.ZipCode != "85004" || a.RadiusMiles != 10 {
		t.Fatalf("legacy columns must back-fill: %+v", a)
	}
}

func TestAlertFromRecordEmptyCurrentFallsThrough(t *testing.T) {
	// An empty-but-valid current string is treated as absent.
	rec := AlertRecord{
		SearchTerm: sql.NullString{String: "", Valid: true},
		Keyword:    sql.NullString{String: "legacy term", Valid: true},
	}
	if a := AlertFromRecord(rec); a.SearchTerm != "legacy term" {
		t.Fatalf("SearchTerm = %q, want the legacy value", a.SearchTerm)
	}
}

func TestAlertToRecordWritesBothGenerations(t *testing.T) {
	fee := 15.0
	a := Alert{
		ID:          "a-3",
		UserID:      "u-2",
		SearchTerm:  "weekly",
		GameType:    "10-ball",
		ZipCode:     "85051",
		RadiusMiles: 50,
		MaxEntryFee: &fee,
		IsActive:    true,
	}

	rec := AlertToRecord(a)
	if rec.SearchTerm.String != rec.Keyword.String || rec.SearchTerm.String != "weekly" {
		t.Fatalf("search term columns diverge: %+v", rec)
	}
	if rec.GameType.String != rec.Game.String || rec.GameType.String != "10-ball" {
		t.Fatalf("game type columns diverge: %+v", rec)
	}
	if rec.ZipCode.String != rec.Zip.String || rec.ZipCode.String != "85051" {
		t.Fatalf("zip columns diverge: %+v", rec)
	}
	if rec.RadiusMiles.Float64 != rec.Radius.Float64 || rec.RadiusMiles.Float64 != 50 {
		t.Fatalf("radius columns diverge: %+v", rec)
	}
	if !rec.MaxEntryFee.Valid || rec.MaxEntryFee.Float64 != 15 {
		t.Fatalf("max entry fee = %+v", rec.MaxEntryFee)
	}
}

func TestAlertRoundTrip(t *testing.T) {
	a := Alert{
		ID:          "a-4",
		UserID:      "u-3",
		SearchTerm:  "open",
		GameType:    "9-ball",
		ZipCode:     "85004",
		RadiusMiles: 25,
		IsActive:    true,
	}
	got := AlertFromRecord(AlertToRecord(a))
	if got != a {
		t.Fatalf("round trip changed the alert:\n got %+v\nwant %+v", got, a)
	}
}
