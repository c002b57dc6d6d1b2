package services

import (
	"time"

	"github.com/compete-app/compete-backend/models"
	"github.com/compete-app/compete-backend/repositories"
)

// TournamentFilters is the transient query-shaping object built from one
// search interaction. It is never persisted.
type TournamentFilters struct {
	SearchTerm      string
	GameType        string
	Format          string
	TableSize       string
	Equipment       string
	CustomEquipment string

	FeeMin   *float64
	FeeMax   *float64
	FargoMin *int
	FargoMax *int

	// Pointer bools keep "unset" distinct from an explicit false.
	ReportsToFargo *bool
	IsHandicapped  *bool
	HasAddedMoney  *bool

	MinGuaranteedGames *int

	DateFrom *time.Time
	DateTo   *time.Time

	City    string
	State   string
	ZipCode string
	Radius  *float64

	// Lat/Lng are manual coordinate entry, kept as strings until parsed.
	Lat string
	Lng string

	UserCoordinates   *models.Coordinates
	DeviceCoordinates *models.Coordinates

	// DaysOfWeek is Monday-indexed: 0=Mon .. 6=Sun.
	DaysOfWeek []int

	Limit  int
	Offset int
}

// removedFilterFields names filter fields that must never reach query
// construction. The list is currently empty; it is retained because schema
// changes have needed it before and will again.
var removedFilterFields = []string{}

// sanitizeFilters returns a shallow copy of f with any removed fields
// cleared. The input is never mutated.
func sanitizeFilters(f TournamentFilters) TournamentFilters {
	out := f
	for _, field := range removedFilterFields {
		switch field {
		case "search_term":
			out.SearchTerm = ""
		case "game_type":
			out.GameType = ""
		case "city":
			out.City = ""
		case "state":
			out.State = ""
		}
	}
	return out
}

// hasRadiusFilter reports whether the radius predicate can run at all: it
// needs both a radius and a ZIP to resolve the origin from.
func hasRadiusFilter(f TournamentFilters) bool {
	return f.Radius != nil && f.ZipCode != ""
}

// hasResidualFilters reports whether any predicate must be applied
// in-process after the database query.
func hasResidualFilters(f TournamentFilters) bool {
	return hasRadiusFilter(f) || len(f.DaysOfWeek) > 0
}

// buildSearchFilter maps the service filter onto the predicates the
// database can express. Administrator variants see inactive and past rows.
func buildSearchFilter(f TournamentFilters, role models.UserRole) repositories.TournamentSearchFilter {
	isAdmin := models.IsAdminRole(role)
	return repositories.TournamentSearchFilter{
		SearchTerm:         f.SearchTerm,
		GameType:           f.GameType,
		Format:             f.Format,
		TableSize:          f.TableSize,
		Equipment:          f.Equipment,
		CustomEquipment:    f.CustomEquipment,
		FeeMin:             f.FeeMin,
		FeeMax:             f.FeeMax,
		FargoMin:           f.FargoMin,
		FargoMax:           f.FargoMax,
		ReportsToFargo:     f.ReportsToFargo,
		IsHandicapped:      f.IsHandicapped,
		HasAddedMoney:      f.HasAddedMoney,
		MinGuaranteedGames: f.MinGuaranteedGames,
		DateFrom:           f.DateFrom,
		DateTo:             f.DateTo,
		City:               f.City,
		State:              f.State,
		IncludeInactive:    isAdmin,
		IncludePast:        isAdmin,
	}
}

// uiDayIndex converts a date's weekday to the Monday-indexed convention the
// filters use (0=Mon .. 6=Sun). time.Weekday is Sunday-indexed, so Sunday
// maps to 6 and everything else shifts down by one.
func uiDayIndex(t time.Time) int {
	d := int(t.Weekday())
	if d == 0 {
		return 6
	}
	return d - 1
}

// filterByDaysOfWeek keeps tournaments whose start date falls on one of the
// requested days.
func filterByDaysOfWeek(tournaments []models.Tournament, days []int) []models.Tournament {
	wanted := make(map[int]struct{}, len(days))
	for _, d := range days {
		wanted[d] = struct{}{}
	}

	out := make([]models.Tournament, 0, len(tournaments))
	for _, t := range tournaments {
		if _, ok := wanted[uiDayIndex(t.StartDate)]; ok {
			out = append(out, t)
		}
	}
	return out
}
