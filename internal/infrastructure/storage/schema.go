package storage

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id BIGSERIAL PRIMARY KEY,
		filename TEXT NOT NULL,
		content TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'indexing',
		type TEXT NOT NULL DEFAULT 'pdf',
		url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS app_config (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		avatar_url TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id BIGSERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
		type TEXT NOT NULL,
		subject TEXT NOT NULL,
		description TEXT,
		files TEXT[] NOT NULL DEFAULT '{}',
		category TEXT,
		module TEXT,
		frequency TEXT,
		scope TEXT,
		severity INTEGER,
		current_behavior TEXT,
		expected_behavior TEXT,
		steps_to_reproduce TEXT[] NOT NULL DEFAULT '{}',
		problem_statement TEXT,
		proposed_solution TEXT,
		business_value TEXT,
		example_link TEXT,
		priority TEXT NOT NULL DEFAULT 'low',
		status TEXT NOT NULL DEFAULT 'new'
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id BIGSERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		ticket_id BIGINT NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
		user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
		content TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS documents_status_idx ON documents (status)`,
	`CREATE INDEX IF NOT EXISTS tickets_created_by_idx ON tickets (created_by)`,
	`CREATE INDEX IF NOT EXISTS comments_ticket_idx ON comments (ticket_id)`,
}

// OpenPostgres opens a pooled connection and checks it is reachable.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate creates missing tables. Statements are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
