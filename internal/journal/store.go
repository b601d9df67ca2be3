package journal

import (
	"context"
	"time"
)

// DailyCycle is one user's record for one UTC calendar day: the mood text
// that seeded generation, the prompt sequence, and completion state.
type DailyCycle struct {
	ID              string     `json:"id"`
	UserID          string     `json:"-"`
	Day             time.Time  `json:"date"`
	OriginalFeeling string     `json:"-"`
	Prompts         []Prompt   `json:"journalPrompts"`
	CompletedAt     *time.Time `json:"completedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Store is the persistence boundary for daily cycles. Every read returns
// prompts already normalized out of the legacy string form.
type Store interface {
	// LoadToday returns the record whose day window contains now, or a
	// not-found error.
	LoadToday(ctx context.Context, userID string) (*DailyCycle, error)

	// List returns records newest-first, optionally bounded by a date range.
	List(ctx context.Context, userID string, limit int, startDate, endDate *time.Time) ([]DailyCycle, error)

	// MutateToday runs fn on today's record inside one atomic section with
	// the row locked against concurrent submits. The mutated prompt list is
	// persisted only when fn reports a change; if no prompt remains
	// unanswered the completion timestamp is set in the same write.
	// Completion is monotonic and never unset.
	MutateToday(ctx context.Context, userID string, fn func(rec *DailyCycle) (changed bool, err error)) (*DailyCycle, error)

	// CreateToday inserts a record for today. If one already exists the
	// existing record is returned unchanged, keeping the one-per-day
	// invariant under concurrent generation calls.
	CreateToday(ctx context.Context, userID, originalFeeling string, questions []string) (*DailyCycle, error)
}
