package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/compete-app/compete-backend/models"
	"github.com/lib/pq"
)

var (
	ErrVenueNotFound     = errors.New("venue not found")
	ErrVenueNameConflict = errors.New("venue name conflict at this address")
	ErrVenueInUse        = errors.New("venue is referenced by tournaments")
)

type VenueRepository interface {
	Create(ctx context.Context, v *models.Venue) error
	GetByID(ctx context.Context, id string) (*models.Venue, error)
	List(ctx context.Context, limit, offset int) ([]models.Venue, error)
	Update(ctx context.Context, v *models.Venue) error
	Delete(ctx context.Context, id string) error
	// FindByZipWithCoordinates returns any venue in the given ZIP that has
	// usable coordinates; it backs the third tier of origin resolution.
	FindByZipWithCoordinates(ctx context.Context, zip string) (*models.Venue, error)
	// WithinRadius lists venues within radiusMeters of the origin point using
	// a geography dwithin predicate.
	WithinRadius(ctx context.Context, lat, lng, radiusMeters float64) ([]models.Venue, error)
}

type postgresVenueRepository struct {
	db *sql.DB
}

func NewPostgresVenueRepository(db *sql.DB) VenueRepository {
	return &postgresVenueRepository{db: db}
}

const venueColumns = `
	id, name, address, city, state, zip_code,
	latitude, longitude, venue_lat, venue_lng, phone, table_count, created_at`

func scanVenue(scanner interface{ Scan(...interface{}) error }) (*models.Venue, error) {
	var v models.Venue
	err := scanner.Scan(
		&v.ID, &v.Name, &v.Address, &v.City, &v.State, &v.ZipCode,
		&v.Latitude, &v.Longitude, &v.VenueLat, &v.VenueLng,
		&v.Phone, &v.TableCount, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *postgresVenueRepository) Create(ctx context.Context, v *models.Venue) error {
	query := `
		INSERT INTO venues (
			name, address, city, state, zip_code,
			latitude, longitude, venue_lat, venue_lng, phone, table_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		v.Name, v.Address, v.City, v.State, v.ZipCode,
		v.Latitude, v.Longitude, v.VenueLat, v.VenueLng, v.Phone, v.TableCount,
	).Scan(&v.ID, &v.CreatedAt)

	return r.handleVenueError(err)
}

func (r *postgresVenueRepository) GetByID(ctx context.Context, id string) (*models.Venue, error) {
	query := "SELECT" + venueColumns + " FROM venues WHERE id = $1"
	v, err := scanVenue(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *postgresVenueRepository) List(ctx context.Context, limit, offset int) ([]models.Venue, error) {
	query := "SELECT" + venueColumns + " FROM venues ORDER BY name ASC, id ASC"
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1 OFFSET $2"
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	venues := make([]models.Venue, 0)
	for rows.Next() {
		v, scanErr := scanVenue(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		venues = append(venues, *v)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return venues, nil
}

func (r *postgresVenueRepository) Update(ctx context.Context, v *models.Venue) error {
	query := `
		UPDATE venues SET
			name = $1, address = $2, city = $3, state = $4, zip_code = $5,
			latitude = $6, longitude = $7, venue_lat = $8, venue_lng = $9,
			phone = $10, table_count = $11
		WHERE id = $12`

	result, err := r.db.ExecContext(ctx, query,
		v.Name, v.Address, v.City, v.State, v.ZipCode,
		v.Latitude, v.Longitude, v.VenueLat, v.VenueLng,
		v.Phone, v.TableCount, v.ID,
	)
	if err != nil {
		return r.handleVenueError(err)
	}
	return checkAffectedRows(result, ErrVenueNotFound)
}

func (r *postgresVenueRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM venues WHERE id = $1`, id)
	if err != nil {
		return r.handleVenueError(err)
	}
	return checkAffectedRows(result, ErrVenueNotFound)
}

func (r *postgresVenueRepository) FindByZipWithCoordinates(ctx context.Context, zip string) (*models.Venue, error) {
	query := "SELECT" + venueColumns + `
		FROM venues
		WHERE zip_code = $1 AND latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY created_at ASC
		LIMIT 1`

	v, err := scanVenue(r.db.QueryRowContext(ctx, query, zip))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *postgresVenueRepository) WithinRadius(ctx context.Context, lat, lng, radiusMeters float64) ([]models.Venue, error) {
	query := "SELECT" + venueColumns + `
		FROM venues
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		AND ST_DWithin(
			geography(ST_MakePoint(longitude, latitude)),
			geography(ST_MakePoint($1, $2)),
			$3
		)
		ORDER BY name ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, lng, lat, radiusMeters)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	venues := make([]models.Venue, 0)
	for rows.Next() {
		v, scanErr := scanVenue(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		venues = append(venues, *v)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return venues, nil
}

func (r *postgresVenueRepository) handleVenueError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			return ErrVenueNameConflict
		case "23503":
			return ErrVenueInUse
		}
	}
	return err
}
