package streak

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// State is a user's login-streak record: streak length, the calendar date of
// the last counted login, and the accumulated point balance.
type State struct {
	CurrentStreak int
	LastLoginDate *time.Time
	Points        int
}

// Store is the persistence boundary for streak state.
type Store interface {
	GetState(ctx context.Context, userID string) (*State, error)

	// ApplyLogin records a streak transition in one write: the new streak,
	// today's date, and the reward added to the point balance.
	ApplyLogin(ctx context.Context, userID string, newStreak int, today time.Time, reward int) error
}

// CheckResult is the outcome of a daily streak check.
type CheckResult struct {
	CurrentStreak   int
	ShouldShowPopup bool
	PointsAwarded   int
	TodayPrize      int
}

// streakCycleDays is the length of the reward cycle; day 7 wraps back to
// day 1 on the next consecutive login.
const streakCycleDays = 7

// Reward returns the points for reaching the given streak length:
// 5, 10, ... 35, cycling every seven days.
func Reward(streak int) int {
	if streak < 1 {
		streak = 1
	}
	day := ((streak - 1) % streakCycleDays) + 1
	return day * 5
}

// Engine computes and persists login streaks. Mutations happen at most once
// per calendar day per user, which makes duplicate login checks idempotent
// without extra locking.
type Engine struct {
	store  Store
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewEngine(store Store, logger *zap.SugaredLogger) *Engine {
	return &Engine{store: store, logger: logger, now: time.Now}
}

// truncateToDay drops the time-of-day, keeping the calendar date in the
// server's local zone.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// sameDate compares calendar dates, ignoring time-of-day and zone. Hour
// arithmetic between local midnights misreads 23h and 25h DST days.
func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// CheckAndUpdate evaluates the user's streak against today and persists the
// transition when one occurred.
func (e *Engine) CheckAndUpdate(ctx context.Context, userID string) (*CheckResult, error) {
	state, err := e.store.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := truncateToDay(e.now())
	currentStreak := state.CurrentStreak
	shouldShowPopup := false
	pointsAwarded := 0

	if state.LastLoginDate == nil {
		// First login ever.
		currentStreak = 1
		shouldShowPopup = true
		pointsAwarded = Reward(currentStreak)
	} else {
		lastLogin := *state.LastLoginDate

		switch {
		case sameDate(lastLogin, today):
			// Already counted today.
		case sameDate(lastLogin.AddDate(0, 0, 1), today):
			if currentStreak == streakCycleDays {
				currentStreak = 1
			} else {
				currentStreak++
			}
			shouldShowPopup = true
			pointsAwarded = Reward(currentStreak)
		default:
			// Streak broken.
			currentStreak = 1
			shouldShowPopup = true
			pointsAwarded = Reward(currentStreak)
		}
	}

	if shouldShowPopup {
		if err := e.store.ApplyLogin(ctx, userID, currentStreak, today, pointsAwarded); err != nil {
			return nil, err
		}
		if e.logger != nil {
			e.logger.Infow("streak updated",
				"user_id", userID,
				"current_streak", currentStreak,
				"points_awarded", pointsAwarded,
			)
		}
	}

	return &CheckResult{
		CurrentStreak:   currentStreak,
		ShouldShowPopup: shouldShowPopup,
		PointsAwarded:   pointsAwarded,
		TodayPrize:      Reward(currentStreak),
	}, nil
}

// GetInfo is a pure read of the user's streak state.
func (e *Engine) GetInfo(ctx context.Context, userID string) (*State, error) {
	return e.store.GetState(ctx, userID)
}
