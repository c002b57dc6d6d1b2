package services

import (
	"testing"
	"time"

	"github.com/compete-app/compete-backend/models"
)

func TestSanitizeFiltersDoesNotMutateInput(t *testing.T) {
	radius := 25.0
	original := TournamentFilters{
		SearchTerm: "open",
		GameType:   "9-ball",
		City:       "Phoenix",
		State:      "AZ",
		ZipCode:    "85051",
		Radius:     &radius,
		DaysOfWeek: []int{5, 6},
	}
	snapshot := original

	_ = sanitizeFilters(original)

	if original.SearchTerm != snapshot.SearchTerm ||
		original.GameType != snapshot.GameType ||
		original.City != snapshot.City ||
		original.State != snapshot.State ||
		original.ZipCode != snapshot.ZipCode {
		t.Fatal("sanitizeFilters mutated its input")
	}
	if original.Radius != snapshot.Radius {
		t.Fatal("sanitizeFilters replaced the radius pointer")
	}
}

func TestUIDayIndex(t *testing.T) {
	cases := []struct {
		date time.Time
		want int
	}{
		{time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), 0},  // Monday
		{time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC), 2},  // Wednesday
		{time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC), 5}, // Saturday
		{time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC), 6}, // Sunday
	}
	for _, tc := range cases {
		if got := uiDayIndex(tc.date); got != tc.want {
			t.Errorf("uiDayIndex(%s) = %d, want %d", tc.date.Weekday(), got, tc.want)
		}
	}
}

func TestHasResidualFilters(t *testing.T) {
	radius := 10.0

	if hasResidualFilters(TournamentFilters{}) {
		t.Fatal("empty filters have no residual predicates")
	}
	if !hasResidualFilters(TournamentFilters{DaysOfWeek: []int{0}}) {
		t.Fatal("day-of-week is a residual predicate")
	}
	if !hasResidualFilters(TournamentFilters{ZipCode: "85051", Radius: &radius}) {
		t.Fatal("radius with zip is a residual predicate")
	}
	// A radius without an origin ZIP cannot run, so it is not residual.
	if hasResidualFilters(TournamentFilters{Radius: &radius}) {
		t.Fatal("radius without zip must not count as residual")
	}
}

func TestBuildSearchFilterRoleVisibility(t *testing.T) {
	player := buildSearchFilter(TournamentFilters{}, models.RolePlayer)
	if player.IncludeInactive || player.IncludePast {
		t.Fatal("players must not see inactive or past tournaments")
	}

	admin := buildSearchFilter(TournamentFilters{}, models.RoleAdmin)
	if !admin.IncludeInactive || !admin.IncludePast {
		t.Fatal("admins see inactive and past tournaments")
	}

	super := buildSearchFilter(TournamentFilters{}, models.RoleSuperAdmin)
	if !super.IncludeInactive || !super.IncludePast {
		t.Fatal("super admins see inactive and past tournaments")
	}
}
