package streak

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// atRiskKeyPrefix namespaces the daily at-risk set in redis.
const atRiskKeyPrefix = "streak:at_risk:"

// ReminderScheduler runs a nightly scan for users whose streak will break if
// they don't log in today (last counted login was yesterday) and caches the
// result for the client's reminder surface.
type ReminderScheduler struct {
	pool        *pgxpool.Pool
	redisClient *redis.Client
	logger      *zap.SugaredLogger
	cronManager *cron.Cron
}

func NewReminderScheduler(pool *pgxpool.Pool, redisClient *redis.Client, logger *zap.SugaredLogger) *ReminderScheduler {
	return &ReminderScheduler{
		pool:        pool,
		redisClient: redisClient,
		logger:      logger,
		cronManager: cron.New(cron.WithLocation(time.UTC)),
	}
}

// Start schedules the scan shortly after each UTC midnight.
func (r *ReminderScheduler) Start() error {
	if _, err := r.cronManager.AddFunc("5 0 * * *", func() {
		if err := r.ScanOnce(context.Background()); err != nil {
			r.logger.Errorw("streak at-risk scan failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule at-risk scan: %w", err)
	}
	r.cronManager.Start()
	return nil
}

func (r *ReminderScheduler) Stop() {
	r.cronManager.Stop()
}

// ScanOnce collects users whose last login was yesterday into today's
// at-risk set. The set expires on its own after two days.
func (r *ReminderScheduler) ScanOnce(ctx context.Context) error {
	today := truncateToDay(time.Now())
	yesterday := today.AddDate(0, 0, -1)

	rows, err := r.pool.Query(ctx,
		`SELECT id FROM users WHERE last_login_date = $1 AND current_streak > 0`, yesterday)
	if err != nil {
		return fmt.Errorf("query at-risk users: %w", err)
	}
	defer rows.Close()

	var userIDs []interface{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan at-risk user: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate at-risk users: %w", err)
	}

	key := atRiskKeyPrefix + today.Format("2006-01-02")
	if len(userIDs) > 0 {
		if err := r.redisClient.SAdd(ctx, key, userIDs...).Err(); err != nil {
			return fmt.Errorf("cache at-risk set: %w", err)
		}
	}
	if err := r.redisClient.Expire(ctx, key, 48*time.Hour).Err(); err != nil {
		return fmt.Errorf("expire at-risk set: %w", err)
	}

	r.logger.Infow("streak at-risk scan completed", "count", len(userIDs), "date", today.Format("2006-01-02"))
	return nil
}

// IsAtRisk reports whether the user appeared in today's at-risk scan.
func (r *ReminderScheduler) IsAtRisk(ctx context.Context, userID string) (bool, error) {
	key := atRiskKeyPrefix + truncateToDay(time.Now()).Format("2006-01-02")
	return r.redisClient.SIsMember(ctx, key, userID).Result()
}
