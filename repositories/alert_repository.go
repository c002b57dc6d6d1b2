package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/compete-app/compete-backend/models"
)

var ErrAlertNotFound = errors.New("alert not found")

type AlertRepository interface {
	Create(ctx context.Context, a *models.Alert) error
	GetByID(ctx context.Context, id string) (*models.Alert, error)
	ListByUser(ctx context.Context, userID string) ([]models.Alert, error)
	Update(ctx context.Context, a *models.Alert) error
	Delete(ctx context.Context, id string) error
}

type postgresAlertRepository struct {
	db *sql.DB
}

func NewPostgresAlertRepository(db *sql.DB) AlertRepository {
	return &postgresAlertRepository{db: db}
}

// Legacy and current column generations are both read and written; the
// alias resolution itself lives in models.AlertFromRecord/AlertToRecord.
const alertColumns = `
	id, user_id, search_term, keyword, game_type, game,
	zip_code, zip, radius_miles, radius, max_entry_fee, is_active, created_at`

func scanAlert(scanner interface{ Scan(...interface{}) error }) (*models.Alert, error) {
	var rec models.AlertRecord
	err := scanner.Scan(
		&rec.ID, &rec.UserID, &rec.SearchTerm, &rec.Keyword, &rec.GameType, &rec.Game,
		&rec.ZipCode, &rec.Zip, &rec.RadiusMiles, &rec.Radius,
		&rec.MaxEntryFee, &rec.IsActive, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	a := models.AlertFromRecord(rec)
	return &a, nil
}

func (r *postgresAlertRepository) Create(ctx context.Context, a *models.Alert) error {
	rec := models.AlertToRecord(*a)
	query := `
		INSERT INTO search_alerts (
			user_id, search_term, keyword, game_type, game,
			zip_code, zip, radius_miles, radius, max_entry_fee, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		rec.UserID, rec.SearchTerm, rec.Keyword, rec.GameType, rec.Game,
		rec.ZipCode, rec.Zip, rec.RadiusMiles, rec.Radius,
		rec.MaxEntryFee, rec.IsActive,
	).Scan(&a.ID, &a.CreatedAt)
}

func (r *postgresAlertRepository) GetByID(ctx context.Context, id string) (*models.Alert, error) {
	query := "SELECT" + alertColumns + " FROM search_alerts WHERE id = $1"
	a, err := scanAlert(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlertNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *postgresAlertRepository) ListByUser(ctx context.Context, userID string) ([]models.Alert, error) {
	query := "SELECT" + alertColumns + " FROM search_alerts WHERE user_id = $1 ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := make([]models.Alert, 0)
	for rows.Next() {
		a, scanErr := scanAlert(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		alerts = append(alerts, *a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *postgresAlertRepository) Update(ctx context.Context, a *models.Alert) error {
	rec := models.AlertToRecord(*a)
	query := `
		UPDATE search_alerts SET
			search_term = $1, keyword = $2, game_type = $3, game = $4,
			zip_code = $5, zip = $6, radius_miles = $7, radius = $8,
			max_entry_fee = $9, is_active = $10
		WHERE id = $11`

	result, err := r.db.ExecContext(ctx, query,
		rec.SearchTerm, rec.Keyword, rec.GameType, rec.Game,
		rec.ZipCode, rec.Zip, rec.RadiusMiles, rec.Radius,
		rec.MaxEntryFee, rec.IsActive, rec.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrAlertNotFound)
}

func (r *postgresAlertRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM search_alerts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrAlertNotFound)
}
