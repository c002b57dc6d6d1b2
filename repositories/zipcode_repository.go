package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/compete-app/compete-backend/models"
)

var ErrZipCodeNotFound = errors.New("zip code not found")

// ZipCodeRepository is the persistent tier of the ZIP geocode cache.
type ZipCodeRepository interface {
	GetByZip(ctx context.Context, zip string) (*models.ZipCode, error)
	Upsert(ctx context.Context, z *models.ZipCode) error
}

type postgresZipCodeRepository struct {
	db *sql.DB
}

func NewPostgresZipCodeRepository(db *sql.DB) ZipCodeRepository {
	return &postgresZipCodeRepository{db: db}
}

func (r *postgresZipCodeRepository) GetByZip(ctx context.Context, zip string) (*models.ZipCode, error) {
	query := `SELECT zip, latitude, longitude, city, state FROM zip_codes WHERE zip = $1`

	var z models.ZipCode
	err := r.db.QueryRowContext(ctx, query, zip).Scan(
		&z.Zip, &z.Latitude, &z.Longitude, &z.City, &z.State,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrZipCodeNotFound
		}
		return nil, err
	}
	return &z, nil
}

// Upsert is idempotent so that concurrent cache-miss resolutions of the same
// ZIP cannot conflict, only repeat work.
func (r *postgresZipCodeRepository) Upsert(ctx context.Context, z *models.ZipCode) error {
	query := `
		INSERT INTO zip_codes (zip, latitude, longitude, city, state)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (zip) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			city = EXCLUDED.city,
			state = EXCLUDED.state`

	_, err := r.db.ExecContext(ctx, query, z.Zip, z.Latitude, z.Longitude, z.City, z.State)
	return err
}
