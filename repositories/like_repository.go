package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrLikeNotFound = errors.New("like not found")

// VenueLikeStats is one row of the per-period like/tournament aggregate the
// admin analytics screen shows for a venue.
type VenueLikeStats struct {
	Period          time.Time `json:"period"`
	TournamentCount int       `json:"tournament_count"`
	LikeCount       int       `json:"like_count"`
}

type LikeRepository interface {
	Like(ctx context.Context, userID, tournamentID string) error
	Unlike(ctx context.Context, userID, tournamentID string) error
	CountByTournament(ctx context.Context, tournamentID string) (int, error)
	// DeleteByTournament removes dependent likes ahead of a hard tournament
	// delete.
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) error
	// VenueStatsByPeriod wraps the get_venue_tournament_likes_stats_by_period
	// stored function.
	VenueStatsByPeriod(ctx context.Context, venueID string, from, to time.Time) ([]VenueLikeStats, error)
}

type postgresLikeRepository struct {
	db *sql.DB
}

func NewPostgresLikeRepository(db *sql.DB) LikeRepository {
	return &postgresLikeRepository{db: db}
}

func (r *postgresLikeRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresLikeRepository) Like(ctx context.Context, userID, tournamentID string) error {
	query := `
		INSERT INTO likes (user_id, tournament_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, tournament_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, userID, tournamentID)
	return err
}

func (r *postgresLikeRepository) Unlike(ctx context.Context, userID, tournamentID string) error {
	query := `DELETE FROM likes WHERE user_id = $1 AND tournament_id = $2`
	result, err := r.db.ExecContext(ctx, query, userID, tournamentID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrLikeNotFound)
}

func (r *postgresLikeRepository) CountByTournament(ctx context.Context, tournamentID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE tournament_id = $1`, tournamentID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postgresLikeRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM likes WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to delete likes for tournament %s: %w", tournamentID, err)
	}
	return nil
}

func (r *postgresLikeRepository) VenueStatsByPeriod(ctx context.Context, venueID string, from, to time.Time) ([]VenueLikeStats, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT * FROM get_venue_tournament_likes_stats_by_period($1, $2, $3)`,
		venueID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("get_venue_tournament_likes_stats_by_period(%s): %w", venueID, err)
	}
	defer rows.Close()

	stats := make([]VenueLikeStats, 0)
	for rows.Next() {
		var s VenueLikeStats
		if scanErr := rows.Scan(&s.Period, &s.TournamentCount, &s.LikeCount); scanErr != nil {
			return nil, scanErr
		}
		stats = append(stats, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}
