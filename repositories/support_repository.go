package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/compete-app/compete-backend/models"
)

var ErrSupportMessageNotFound = errors.New("support message not found")

type SupportRepository interface {
	Create(ctx context.Context, m *models.SupportMessage) error
	GetByID(ctx context.Context, id string) (*models.SupportMessage, error)
	ListByUser(ctx context.Context, userID string) ([]models.SupportMessage, error)
	ListAll(ctx context.Context, status *models.SupportStatus) ([]models.SupportMessage, error)
	Respond(ctx context.Context, id string, response string, status models.SupportStatus) error
	UpdateStatus(ctx context.Context, id string, status models.SupportStatus) error
	MarkRead(ctx context.Context, id string, read bool) error
}

type postgresSupportRepository struct {
	db *sql.DB
}

func NewPostgresSupportRepository(db *sql.DB) SupportRepository {
	return &postgresSupportRepository{db: db}
}

const supportColumns = `
	id, user_id, subject, message, status, is_read, admin_response, created_at, updated_at`

func scanSupportMessage(scanner interface{ Scan(...interface{}) error }) (*models.SupportMessage, error) {
	var m models.SupportMessage
	err := scanner.Scan(
		&m.ID, &m.UserID, &m.Subject, &m.Message, &m.Status,
		&m.IsRead, &m.AdminResponse, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *postgresSupportRepository) Create(ctx context.Context, m *models.SupportMessage) error {
	query := `
		INSERT INTO support_messages (user_id, subject, message, status, is_read)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		m.UserID, m.Subject, m.Message, models.SupportPending,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func (r *postgresSupportRepository) GetByID(ctx context.Context, id string) (*models.SupportMessage, error) {
	query := "SELECT" + supportColumns + " FROM support_messages WHERE id = $1"
	m, err := scanSupportMessage(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSupportMessageNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresSupportRepository) ListByUser(ctx context.Context, userID string) ([]models.SupportMessage, error) {
	query := "SELECT" + supportColumns + " FROM support_messages WHERE user_id = $1 ORDER BY created_at DESC"
	return r.queryMessages(ctx, query, userID)
}

func (r *postgresSupportRepository) ListAll(ctx context.Context, status *models.SupportStatus) ([]models.SupportMessage, error) {
	query := "SELECT" + supportColumns + " FROM support_messages"
	args := []interface{}{}
	if status != nil {
		query += " WHERE status = $1"
		args = append(args, *status)
	}
	query += " ORDER BY created_at DESC"
	return r.queryMessages(ctx, query, args...)
}

func (r *postgresSupportRepository) queryMessages(ctx context.Context, query string, args ...interface{}) ([]models.SupportMessage, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.SupportMessage, 0)
	for rows.Next() {
		m, scanErr := scanSupportMessage(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		messages = append(messages, *m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *postgresSupportRepository) Respond(ctx context.Context, id string, response string, status models.SupportStatus) error {
	query := `
		UPDATE support_messages
		SET admin_response = $1, status = $2, updated_at = NOW()
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, response, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSupportMessageNotFound)
}

func (r *postgresSupportRepository) UpdateStatus(ctx context.Context, id string, status models.SupportStatus) error {
	query := `UPDATE support_messages SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSupportMessageNotFound)
}

func (r *postgresSupportRepository) MarkRead(ctx context.Context, id string, read bool) error {
	query := `UPDATE support_messages SET is_read = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, read, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSupportMessageNotFound)
}
