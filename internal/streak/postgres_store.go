package streak

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beaverbuddy/server/internal/apperr"
)

// PostgresStore keeps streak state on the users row; the point increment and
// date update land in the same write so a crash can't award points twice.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) GetState(ctx context.Context, userID string) (*State, error) {
	var state State
	query := `SELECT current_streak, last_login_date, points FROM users WHERE id = $1`
	err := s.pool.QueryRow(ctx, query, userID).Scan(&state.CurrentStreak, &state.LastLoginDate, &state.Points)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to load streak state", err)
	}
	return &state, nil
}

func (s *PostgresStore) ApplyLogin(ctx context.Context, userID string, newStreak int, today time.Time, reward int) error {
	query := `
		UPDATE users
		SET current_streak = $2,
		    last_login_date = $3,
		    points = points + $4
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query, userID, newStreak, today, reward)
	if err != nil {
		return apperr.Internal("Failed to update streak", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}
