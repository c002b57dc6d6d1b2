package repositories

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/compete-app/compete-backend/models"
)

func TestBuildSearchWhereDefaults(t *testing.T) {
	where, args := buildSearchWhere(TournamentSearchFilter{})

	if !strings.Contains(where, "t.is_recurring_master = FALSE") {
		t.Fatal("master rows must always be excluded")
	}
	if !strings.Contains(where, "t.status = $1") {
		t.Fatal("non-admin search must filter on status")
	}
	if !strings.Contains(where, "t.start_date >= CURRENT_DATE") {
		t.Fatal("non-admin search must floor at today")
	}
	if len(args) != 1 || args[0] != models.StatusActive {
		t.Fatalf("args = %v, want [active]", args)
	}
}

func TestBuildSearchWhereAdminVisibility(t *testing.T) {
	where, args := buildSearchWhere(TournamentSearchFilter{
		IncludeInactive: true,
		IncludePast:     true,
	})

	if strings.Contains(where, "t.status") {
		t.Fatal("admin search must not filter on status")
	}
	if strings.Contains(where, "CURRENT_DATE") {
		t.Fatal("admin search must not floor at today")
	}
	if !strings.Contains(where, "t.is_recurring_master = FALSE") {
		t.Fatal("master rows are excluded even for admins")
	}
	if len(args) != 0 {
		t.Fatalf("args = %v, want none", args)
	}
}

func TestBuildSearchWhereExplicitDateFromReplacesFloor(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	where, args := buildSearchWhere(TournamentSearchFilter{DateFrom: &from})

	if strings.Contains(where, "CURRENT_DATE") {
		t.Fatal("explicit DateFrom must replace the default floor")
	}
	if !strings.Contains(where, "t.start_date >= $2") {
		t.Fatalf("where = %q, missing parameterized date floor", where)
	}
	if len(args) != 2 {
		t.Fatalf("args = %v, want status and date", args)
	}
}

func TestBuildSearchWhereSearchTerm(t *testing.T) {
	where, args := buildSearchWhere(TournamentSearchFilter{
		SearchTerm:      "open",
		IncludeInactive: true,
		IncludePast:     true,
	})

	for _, col := range searchTermColumns {
		if !strings.Contains(where, col+" ILIKE $1") {
			t.Fatalf("column %s missing from the search term clause", col)
		}
	}
	if strings.Count(where, " OR ") != len(searchTermColumns)-1 {
		t.Fatal("search term columns must be OR-joined")
	}
	if len(args) != 1 || args[0] != "%open%" {
		t.Fatalf("args = %v, want a single %%open%% pattern", args)
	}
}

func TestBuildSearchWherePlaceholdersSequential(t *testing.T) {
	feeMin, feeMax := 10.0, 50.0
	fargoMax := 600
	yes := true
	where, args := buildSearchWhere(TournamentSearchFilter{
		SearchTerm:     "open",
		GameType:       "9-ball",
		FeeMin:         &feeMin,
		FeeMax:         &feeMax,
		FargoMax:       &fargoMax,
		ReportsToFargo: &yes,
		City:           "Phoenix",
	})

	for i := 1; i <= len(args); i++ {
		if !strings.Contains(where, "$"+strconv.Itoa(i)) {
			t.Fatalf("placeholder $%d missing; where = %q", i, where)
		}
	}
	if strings.Contains(where, "$"+strconv.Itoa(len(args)+1)) {
		t.Fatal("placeholder past the argument count")
	}
}

func testTournamentColumns() []string {
	return []string{
		"id", "id_unique_number", "name", "game_type", "format", "table_size",
		"equipment", "custom_equipment", "description", "start_date", "start_time",
		"entry_fee", "guaranteed_games", "fargo_rating",
		"reports_to_fargo", "is_handicapped", "has_added_money", "status",
		"address", "zip_code", "latitude", "longitude", "venue_lat", "venue_lng",
		"venue_id", "director_name", "director_phone", "flyer_key",
		"is_recurring", "recurring_series_id", "is_recurring_master", "created_at",
		"v_id", "v_name", "v_address", "v_city", "v_state", "v_zip",
		"v_latitude", "v_longitude", "v_venue_lat", "v_venue_lng",
	}
}

func addTournamentRow(rows *sqlmock.Rows, id string, extra ...driver.Value) *sqlmock.Rows {
	vals := []driver.Value{
		id, 1001, "Friday Night 9-Ball", "9-ball", "single elimination", "9ft",
		"Diamond", nil, nil, time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC), "19:00",
		25.0, 0, nil,
		true, false, false, "active",
		"123 Main St, Phoenix, AZ", "85051", nil, nil, nil, nil,
		nil, nil, nil, nil,
		false, nil, false, time.Now(),
		nil, nil, nil, nil, nil, nil,
		nil, nil, nil, nil,
	}
	vals = append(vals, extra...)
	return rows.AddRow(vals...)
}

func TestSearchEmbedsWindowCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresTournamentRepository(db)

	cols := append(testTournamentColumns(), "total_count")
	rows := sqlmock.NewRows(cols)
	addTournamentRow(rows, "t-1", 7)

	mock.ExpectQuery(regexp.QuoteMeta("COUNT(*) OVER () AS total_count")).
		WithArgs(models.StatusActive, 20, 0).
		WillReturnRows(rows)

	tournaments, total, err := repo.Search(context.Background(), TournamentSearchFilter{}, 20, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 7 {
		t.Fatalf("total = %d, want 7", total)
	}
	if len(tournaments) != 1 || tournaments[0].ID != "t-1" {
		t.Fatalf("tournaments = %+v, want one row t-1", tournaments)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSearchEmptyPagePastEndRecounts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresTournamentRepository(db)

	empty := sqlmock.NewRows(append(testTournamentColumns(), "total_count"))
	mock.ExpectQuery(regexp.QuoteMeta("COUNT(*) OVER () AS total_count")).
		WithArgs(models.StatusActive, 20, 100).
		WillReturnRows(empty)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(models.StatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	tournaments, total, err := repo.Search(context.Background(), TournamentSearchFilter{}, 20, 100)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(tournaments) != 0 {
		t.Fatalf("tournaments = %+v, want empty", tournaments)
	}
	if total != 5 {
		t.Fatalf("total = %d, want recounted 5", total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSearchAllAttachesVenue(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresTournamentRepository(db)

	rows := sqlmock.NewRows(testTournamentColumns()).AddRow(
		"t-2", 1002, "Venue Open", "8-ball", "double elimination", "7ft",
		"Valley", nil, nil, time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC), nil,
		10.0, 3, nil,
		false, false, true, "active",
		nil, nil, nil, nil, nil, nil,
		"v-1", nil, nil, nil,
		false, nil, false, time.Now(),
		"v-1", "Corner Pocket", "456 Oak Ave", "Phoenix", "AZ", "85051",
		33.5587, -112.1120, nil, nil,
	)
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN venues")).
		WithArgs(models.StatusActive).
		WillReturnRows(rows)

	tournaments, err := repo.SearchAll(context.Background(), TournamentSearchFilter{})
	if err != nil {
		t.Fatalf("SearchAll: %v", err)
	}
	if len(tournaments) != 1 {
		t.Fatalf("got %d tournaments, want 1", len(tournaments))
	}
	v := tournaments[0].Venue
	if v == nil {
		t.Fatal("venue not attached")
	}
	if v.Name != "Corner Pocket" || v.Latitude == nil || *v.Latitude != 33.5587 {
		t.Fatalf("venue = %+v", v)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCountExcludesMasters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresTournamentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("is_recurring_master = FALSE")).
		WithArgs(models.StatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	status := models.StatusActive
	count, err := repo.Count(context.Background(), &status)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 12 {
		t.Fatalf("count = %d, want 12", count)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArchiveExpiredFallsBackToTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresTournamentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT archive_expired_tournaments()")).
		WillReturnError(errFunctionMissing)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tournaments_archive")).
		WithArgs(models.StatusActive).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tournaments")).
		WithArgs(models.StatusActive).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	archived, err := repo.ArchiveExpired(context.Background())
	if err != nil {
		t.Fatalf("ArchiveExpired: %v", err)
	}
	if archived != 3 {
		t.Fatalf("archived = %d, want 3", archived)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

var errFunctionMissing = errors.New("function archive_expired_tournaments() does not exist")
