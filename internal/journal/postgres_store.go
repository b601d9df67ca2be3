package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/beaverbuddy/server/internal/apperr"
)

// PostgresStore persists daily cycles in the daily_cycles table with the
// prompt list as a JSONB array.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

const cycleColumns = `id, user_id, day, original_feeling, journal_prompts, completed_at, created_at`

// todayWindowUTC returns the [start, end) bounds of the current UTC day.
func todayWindowUTC(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

func (s *PostgresStore) LoadToday(ctx context.Context, userID string) (*DailyCycle, error) {
	start, end := todayWindowUTC(s.now())
	query := fmt.Sprintf(`SELECT %s FROM daily_cycles WHERE user_id = $1 AND day >= $2 AND day < $3`, cycleColumns)
	return s.scanCycle(s.pool.QueryRow(ctx, query, userID, start, end))
}

func (s *PostgresStore) List(ctx context.Context, userID string, limit int, startDate, endDate *time.Time) ([]DailyCycle, error) {
	query := fmt.Sprintf(`SELECT %s FROM daily_cycles WHERE user_id = $1`, cycleColumns)
	args := []interface{}{userID}
	argCounter := 2

	if startDate != nil {
		query += fmt.Sprintf(` AND day >= $%d`, argCounter)
		args = append(args, *startDate)
		argCounter++
	}
	if endDate != nil {
		query += fmt.Sprintf(` AND day <= $%d`, argCounter)
		args = append(args, *endDate)
		argCounter++
	}
	query += fmt.Sprintf(` ORDER BY day DESC LIMIT $%d`, argCounter)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch journal entries", err)
	}
	defer rows.Close()

	var cycles []DailyCycle
	for rows.Next() {
		cycle, err := s.scanCycle(rows)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, *cycle)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("Failed to fetch journal entries", err)
	}
	return cycles, nil
}

func (s *PostgresStore) MutateToday(ctx context.Context, userID string, fn func(rec *DailyCycle) (bool, error)) (*DailyCycle, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to start database transaction", err)
	}
	defer tx.Rollback(ctx)

	// FOR UPDATE serializes concurrent submits for the same user and day;
	// the whole prompt array is rewritten on save, so an unlocked
	// read-modify-write would lose one of two simultaneous answers.
	start, end := todayWindowUTC(s.now())
	query := fmt.Sprintf(`SELECT %s FROM daily_cycles WHERE user_id = $1 AND day >= $2 AND day < $3 FOR UPDATE`, cycleColumns)
	rec, err := s.scanCycle(tx.QueryRow(ctx, query, userID, start, end))
	if err != nil {
		return nil, err
	}

	changed, err := fn(rec)
	if err != nil {
		return nil, err
	}
	if !changed {
		return rec, nil
	}

	promptsJSON, err := json.Marshal(rec.Prompts)
	if err != nil {
		return nil, apperr.Internal("Failed to encode journal prompts", err)
	}

	markComplete := CountRemaining(rec.Prompts) == 0
	updateQuery := `
		UPDATE daily_cycles
		SET journal_prompts = $1,
		    completed_at = CASE WHEN $2 THEN COALESCE(completed_at, NOW()) ELSE completed_at END
		WHERE id = $3
		RETURNING completed_at
	`
	if err := tx.QueryRow(ctx, updateQuery, promptsJSON, markComplete, rec.ID).Scan(&rec.CompletedAt); err != nil {
		return nil, apperr.Internal("Failed to save journal entry", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Internal("Failed to save journal entry", err)
	}
	return rec, nil
}

func (s *PostgresStore) CreateToday(ctx context.Context, userID, originalFeeling string, questions []string) (*DailyCycle, error) {
	prompts := make([]Prompt, len(questions))
	for i, q := range questions {
		prompts[i] = Prompt{Question: q}
	}
	promptsJSON, err := json.Marshal(prompts)
	if err != nil {
		return nil, apperr.Internal("Failed to encode journal prompts", err)
	}

	start, _ := todayWindowUTC(s.now())
	insertQuery := fmt.Sprintf(`
		INSERT INTO daily_cycles (id, user_id, day, original_feeling, journal_prompts)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, day) DO NOTHING
		RETURNING %s`, cycleColumns)

	rec, err := s.scanCycle(s.pool.QueryRow(ctx, insertQuery, uuid.New().String(), userID, start, originalFeeling, promptsJSON))
	if err == nil {
		return rec, nil
	}
	if apperr.CodeOf(err) != apperr.CodeNotFound {
		return nil, err
	}
	// Conflict path: another call already created today's record.
	return s.LoadToday(ctx, userID)
}

// scanCycle reads one row and normalizes the prompt array. Legacy records
// store bare strings inside journal_prompts; Prompt.UnmarshalJSON converts
// them, so nothing downstream ever sees the legacy shape.
func (s *PostgresStore) scanCycle(row pgx.Row) (*DailyCycle, error) {
	var rec DailyCycle
	var promptsJSON []byte
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Day, &rec.OriginalFeeling, &promptsJSON, &rec.CompletedAt, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("No journal prompts found for today")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to load journal record", err)
	}
	if err := json.Unmarshal(promptsJSON, &rec.Prompts); err != nil {
		return nil, apperr.Internal("Invalid journal prompts data", err)
	}
	return &rec, nil
}
