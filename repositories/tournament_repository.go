package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/compete-app/compete-backend/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound       = errors.New("tournament not found")
	ErrTournamentInvalidVenue   = errors.New("invalid venue reference")
	ErrTournamentNumberConflict = errors.New("tournament display number conflict")
)

// TournamentSearchFilter carries every predicate the database can express.
// Radius and day-of-week filtering happen in the service layer against the
// result of SearchAll.
type TournamentSearchFilter struct {
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

	ReportsToFargo *bool
	IsHandicapped  *bool
	HasAddedMoney  *bool

	MinGuaranteedGames *int

	DateFrom *time.Time
	DateTo   *time.Time

	// City/state match against the denormalized address column. Structured
	// venue columns are nullable for free-address tournaments, so the
	// substring match is the only predicate covering both shapes.
	City  string
	State string

	// Administrator variants see inactive and past tournaments.
	IncludeInactive bool
	IncludePast     bool
}

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	Search(ctx context.Context, filter TournamentSearchFilter, limit, offset int) ([]models.Tournament, int, error)
	SearchAll(ctx context.Context, filter TournamentSearchFilter) ([]models.Tournament, error)
	Update(ctx context.Context, t *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.TournamentStatus) error
	UpdateFlyerKey(ctx context.Context, id string, flyerKey *string) error
	Delete(ctx context.Context, exec SQLExecutor, id string) error
	ArchiveManual(ctx context.Context, id string) error
	ArchiveExpired(ctx context.Context) (int, error)
	Count(ctx context.Context, status *models.TournamentStatus) (int, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentSelectColumns = `
	t.id, t.id_unique_number, t.name, t.game_type, t.format, t.table_size,
	t.equipment, t.custom_equipment, t.description, t.start_date, t.start_time,
	t.entry_fee, t.guaranteed_games, t.fargo_rating,
	t.reports_to_fargo, t.is_handicapped, t.has_added_money, t.status,
	t.address, t.zip_code, t.latitude, t.longitude, t.venue_lat, t.venue_lng,
	t.venue_id, t.director_name, t.director_phone, t.flyer_key,
	t.is_recurring, t.recurring_series_id, t.is_recurring_master, t.created_at,
	v.id, v.name, v.address, v.city, v.state, v.zip_code,
	v.latitude, v.longitude, v.venue_lat, v.venue_lng`

const tournamentFromClause = `
	FROM tournaments t
	LEFT JOIN venues v ON v.id = t.venue_id`

// searchTermColumns are the text columns the free-form search term is
// OR-matched against.
var searchTermColumns = []string{
	"t.name", "t.description", "t.game_type", "t.format", "t.equipment",
	"t.custom_equipment", "t.address", "t.director_name", "v.name", "v.city",
}

// buildSearchWhere renders filter into a WHERE clause. Master rows of
// recurring series are templates, never user-visible, so they are excluded
// unconditionally.
func buildSearchWhere(filter TournamentSearchFilter) (string, []interface{}) {
	clauses := []string{"t.is_recurring_master = FALSE"}
	args := []interface{}{}
	argID := 1

	add := func(clause string, vals ...interface{}) {
		clauses = append(clauses, clause)
		args = append(args, vals...)
		argID += len(vals)
	}

	if !filter.IncludeInactive {
		add(fmt.Sprintf("t.status = $%d", argID), models.StatusActive)
	}
	if filter.DateFrom != nil {
		add(fmt.Sprintf("t.start_date >= $%d", argID), *filter.DateFrom)
	} else if !filter.IncludePast {
		// Default "today onward" floor; an explicit DateFrom replaces it.
		clauses = append(clauses, "t.start_date >= CURRENT_DATE")
	}
	if filter.DateTo != nil {
		add(fmt.Sprintf("t.start_date <= $%d", argID), *filter.DateTo)
	}

	if filter.SearchTerm != "" {
		pattern := "%" + filter.SearchTerm + "%"
		parts := make([]string, 0, len(searchTermColumns))
		for _, col := range searchTermColumns {
			parts = append(parts, fmt.Sprintf("%s ILIKE $%d", col, argID))
		}
		clauses = append(clauses, "("+strings.Join(parts, " OR ")+")")
		args = append(args, pattern)
		argID++
	}

	if filter.GameType != "" {
		add(fmt.Sprintf("t.game_type ILIKE $%d", argID), filter.GameType)
	}
	if filter.Format != "" {
		add(fmt.Sprintf("t.format ILIKE $%d", argID), filter.Format)
	}
	if filter.TableSize != "" {
		add(fmt.Sprintf("t.table_size ILIKE $%d", argID), filter.TableSize)
	}
	if filter.Equipment != "" {
		add(fmt.Sprintf("t.equipment ILIKE $%d", argID), filter.Equipment)
	}
	if filter.CustomEquipment != "" {
		add(fmt.Sprintf("t.custom_equipment ILIKE $%d", argID), "%"+filter.CustomEquipment+"%")
	}

	if filter.FeeMin != nil {
		add(fmt.Sprintf("t.entry_fee >= $%d", argID), *filter.FeeMin)
	}
	if filter.FeeMax != nil {
		add(fmt.Sprintf("t.entry_fee <= $%d", argID), *filter.FeeMax)
	}
	if filter.FargoMin != nil {
		add(fmt.Sprintf("t.fargo_rating >= $%d", argID), *filter.FargoMin)
	}
	if filter.FargoMax != nil {
		add(fmt.Sprintf("t.fargo_rating <= $%d", argID), *filter.FargoMax)
	}

	// Pointer bools distinguish "unset" from an explicit false.
	if filter.ReportsToFargo != nil {
		add(fmt.Sprintf("t.reports_to_fargo = $%d", argID), *filter.ReportsToFargo)
	}
	if filter.IsHandicapped != nil {
		add(fmt.Sprintf("t.is_handicapped = $%d", argID), *filter.IsHandicapped)
	}
	if filter.HasAddedMoney != nil {
		add(fmt.Sprintf("t.has_added_money = $%d", argID), *filter.HasAddedMoney)
	}

	if filter.MinGuaranteedGames != nil {
		add(fmt.Sprintf("t.guaranteed_games >= $%d", argID), *filter.MinGuaranteedGames)
	}

	if filter.City != "" {
		add(fmt.Sprintf("t.address ILIKE $%d", argID), "%"+filter.City+"%")
	}
	if filter.State != "" {
		add(fmt.Sprintf("t.address ILIKE $%d", argID), "%"+filter.State+"%")
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// Search returns one page plus the total row count for the same predicates.
// The count is a window aggregate embedded in the data query, so the page
// and the total can never be produced by two differently-filtered queries.
func (r *postgresTournamentRepository) Search(ctx context.Context, filter TournamentSearchFilter, limit, offset int) ([]models.Tournament, int, error) {
	where, args := buildSearchWhere(filter)

	query := "SELECT" + tournamentSelectColumns + ", COUNT(*) OVER () AS total_count" +
		tournamentFromClause + "\n\t" + where +
		"\n\tORDER BY t.start_date ASC, t.id ASC" +
		fmt.Sprintf("\n\tLIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	total := 0
	for rows.Next() {
		t, rowTotal, scanErr := scanTournamentRow(rows, true)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		total = rowTotal
		tournaments = append(tournaments, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	// A page past the end of the result set returns no rows and therefore no
	// window count. Recount with identical predicates.
	if len(tournaments) == 0 && offset > 0 {
		total, err = r.countWhere(ctx, filter)
		if err != nil {
			return nil, 0, err
		}
	}

	return tournaments, total, nil
}

// SearchAll returns the full unpaginated result set for filter, ordered the
// same way as Search. The service layer uses it when radius or day-of-week
// predicates must be applied in-process.
func (r *postgresTournamentRepository) SearchAll(ctx context.Context, filter TournamentSearchFilter) ([]models.Tournament, error) {
	where, args := buildSearchWhere(filter)

	query := "SELECT" + tournamentSelectColumns +
		tournamentFromClause + "\n\t" + where +
		"\n\tORDER BY t.start_date ASC, t.id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		t, _, scanErr := scanTournamentRow(rows, false)
		if scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) countWhere(ctx context.Context, filter TournamentSearchFilter) (int, error) {
	where, args := buildSearchWhere(filter)
	query := "SELECT COUNT(*)" + tournamentFromClause + "\n\t" + where

	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// scanTournamentRow scans one joined row, attaching the venue when present.
func scanTournamentRow(rows *sql.Rows, withCount bool) (*models.Tournament, int, error) {
	var t models.Tournament
	var total int

	var vID, vName, vAddress, vCity, vState, vZip, vLat, vLng sql.NullString
	var vLatitude, vLongitude sql.NullFloat64

	dest := []interface{}{
		&t.ID, &t.UniqueNumber, &t.Name, &t.GameType, &t.Format, &t.TableSize,
		&t.Equipment, &t.CustomEquipment, &t.Description, &t.StartDate, &t.StartTime,
		&t.EntryFee, &t.GuaranteedGames, &t.FargoRating,
		&t.ReportsToFargo, &t.IsHandicapped, &t.HasAddedMoney, &t.Status,
		&t.Address, &t.ZipCode, &t.Latitude, &t.Longitude, &t.VenueLat, &t.VenueLng,
		&t.VenueID, &t.DirectorName, &t.DirectorPhone, &t.FlyerKey,
		&t.IsRecurring, &t.RecurringSeriesID, &t.IsRecurringMaster, &t.CreatedAt,
		&vID, &vName, &vAddress, &vCity, &vState, &vZip,
		&vLatitude, &vLongitude, &vLat, &vLng,
	}
	if withCount {
		dest = append(dest, &total)
	}

	if err := rows.Scan(dest...); err != nil {
		return nil, 0, err
	}

	if vID.Valid {
		venue := &models.Venue{ID: vID.String, Name: vName.String}
		venue.Address = nullStringPtr(vAddress)
		venue.City = nullStringPtr(vCity)
		venue.State = nullStringPtr(vState)
		venue.ZipCode = nullStringPtr(vZip)
		venue.VenueLat = nullStringPtr(vLat)
		venue.VenueLng = nullStringPtr(vLng)
		if vLatitude.Valid {
			lat := vLatitude.Float64
			venue.Latitude = &lat
		}
		if vLongitude.Valid {
			lng := vLongitude.Float64
			venue.Longitude = &lng
		}
		t.Venue = venue
	}

	return &t, total, nil
}

func nullStringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	// id and id_unique_number come from the database (uuid default and a
	// sequence), so concurrent creators can never race on the display number.
	query := `
		INSERT INTO tournaments (
			name, game_type, format, table_size, equipment, custom_equipment,
			description, start_date, start_time, entry_fee, guaranteed_games,
			fargo_rating, reports_to_fargo, is_handicapped, has_added_money,
			status, address, zip_code, latitude, longitude, venue_lat, venue_lng,
			venue_id, director_name, director_phone,
			is_recurring, recurring_series_id, is_recurring_master
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28
		)
		RETURNING id, id_unique_number, created_at`

	err := executor.QueryRowContext(ctx, query,
		t.Name, t.GameType, t.Format, t.TableSize, t.Equipment, t.CustomEquipment,
		t.Description, t.StartDate, t.StartTime, t.EntryFee, t.GuaranteedGames,
		t.FargoRating, t.ReportsToFargo, t.IsHandicapped, t.HasAddedMoney,
		t.Status, t.Address, t.ZipCode, t.Latitude, t.Longitude, t.VenueLat, t.VenueLng,
		t.VenueID, t.DirectorName, t.DirectorPhone,
		t.IsRecurring, t.RecurringSeriesID, t.IsRecurringMaster,
	).Scan(&t.ID, &t.UniqueNumber, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := "SELECT" + tournamentSelectColumns + tournamentFromClause + "\n\tWHERE t.id = $1"

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrTournamentNotFound
	}
	t, _, err := scanTournamentRow(rows, false)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			name = $1, game_type = $2, format = $3, table_size = $4,
			equipment = $5, custom_equipment = $6, description = $7,
			start_date = $8, start_time = $9, entry_fee = $10,
			guaranteed_games = $11, fargo_rating = $12,
			reports_to_fargo = $13, is_handicapped = $14, has_added_money = $15,
			address = $16, zip_code = $17, latitude = $18, longitude = $19,
			venue_id = $20, director_name = $21, director_phone = $22
		WHERE id = $23`

	result, err := r.db.ExecContext(ctx, query,
		t.Name, t.GameType, t.Format, t.TableSize,
		t.Equipment, t.CustomEquipment, t.Description,
		t.StartDate, t.StartTime, t.EntryFee,
		t.GuaranteedGames, t.FargoRating,
		t.ReportsToFargo, t.IsHandicapped, t.HasAddedMoney,
		t.Address, t.ZipCode, t.Latitude, t.Longitude,
		t.VenueID, t.DirectorName, t.DirectorPhone,
		t.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateFlyerKey(ctx context.Context, id string, flyerKey *string) error {
	query := `UPDATE tournaments SET flyer_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, flyerKey, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament flyer key: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM tournaments WHERE id = $1`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// ArchiveManual invokes the archive_tournament_manual_simple stored function,
// which copies the row into tournaments_archive and removes it. Callers fall
// back to a manual delete when the function is missing or fails.
func (r *postgresTournamentRepository) ArchiveManual(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `SELECT archive_tournament_manual_simple($1)`, id)
	if err != nil {
		return fmt.Errorf("archive_tournament_manual_simple(%s): %w", id, err)
	}
	return nil
}

// ArchiveExpired moves past-dated tournaments into the archive. It prefers
// the archive_expired_tournaments stored function and falls back to the
// equivalent manual statements in one transaction.
func (r *postgresTournamentRepository) ArchiveExpired(ctx context.Context) (int, error) {
	var archived int
	err := r.db.QueryRowContext(ctx, `SELECT archive_expired_tournaments()`).Scan(&archived)
	if err == nil {
		return archived, nil
	}

	tx, txErr := r.db.BeginTx(ctx, nil)
	if txErr != nil {
		return 0, fmt.Errorf("begin archive fallback: %w", txErr)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO tournaments_archive
		SELECT * FROM tournaments
		WHERE status = $1 AND start_date < CURRENT_DATE AND is_recurring_master = FALSE`,
		models.StatusActive,
	); err != nil {
		return 0, fmt.Errorf("archive fallback insert: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM tournaments
		WHERE status = $1 AND start_date < CURRENT_DATE AND is_recurring_master = FALSE`,
		models.StatusActive,
	)
	if err != nil {
		return 0, fmt.Errorf("archive fallback delete: %w", err)
	}
	affected, _ := result.RowsAffected()

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit archive fallback: %w", err)
	}
	return int(affected), nil
}

func (r *postgresTournamentRepository) Count(ctx context.Context, status *models.TournamentStatus) (int, error) {
	query := `SELECT COUNT(*) FROM tournaments WHERE is_recurring_master = FALSE`
	args := []interface{}{}
	if status != nil {
		query += ` AND status = $1`
		args = append(args, *status)
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "tournaments_id_unique_number_key" {
				return ErrTournamentNumberConflict
			}
		case "23503":
			if pqErr.Constraint == "tournaments_venue_id_fkey" {
				return ErrTournamentInvalidVenue
			}
		}
	}
	return err
}
