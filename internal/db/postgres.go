package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InitPostgres initializes and returns a PostgreSQL connection pool for the
// given database URL.
func InitPostgres(databaseURL string) (*pgxpool.Pool, error) {
	// Configure connection pool
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Set connection pool settings
	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = time.Minute * 30
	config.HealthCheckPeriod = time.Minute * 5

	// Create connection pool
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Create tables if they don't exist
	if err := createTables(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pool, nil
}

// createTables creates all required tables if they don't exist
func createTables(ctx context.Context, pool *pgxpool.Pool) error {
	// Users table - account identity plus streak state. Streak columns are
	// mutated only by the streak engine, at most once per calendar day.
	usersTable := `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			points INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0),
			current_streak INTEGER NOT NULL DEFAULT 0 CHECK (current_streak >= 0),
			last_login_date DATE NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`

	// Daily cycles - one row per user per UTC day: the seed mood text, the
	// journal prompt sequence (JSONB array), and completion state. The
	// prompt array may still contain legacy bare-string entries; readers
	// normalize on the way out.
	dailyCyclesTable := `
		CREATE TABLE IF NOT EXISTS daily_cycles (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			day TIMESTAMP WITH TIME ZONE NOT NULL,
			original_feeling TEXT NOT NULL DEFAULT '',
			journal_prompts JSONB NOT NULL,
			completed_at TIMESTAMP WITH TIME ZONE NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			UNIQUE(user_id, day)
		);
	`

	// Create indexes for better performance
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);`,
		`CREATE INDEX IF NOT EXISTS idx_users_last_login_date ON users(last_login_date);`,
		`CREATE INDEX IF NOT EXISTS idx_daily_cycles_user_id ON daily_cycles(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_daily_cycles_user_day ON daily_cycles(user_id, day DESC);`,
	}

	// Execute table creation statements
	tables := []string{usersTable, dailyCyclesTable}

	for _, table := range tables {
		if _, err := pool.Exec(ctx, table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	// Execute index creation statements
	for _, index := range indexes {
		if _, err := pool.Exec(ctx, index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
