// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package database

import (
	"context"
	"fmt"
)

// schemaContext returns a context for DDL statements.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), schemaTimeout)
}

// createTables creates the core database tables and indexes.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// getTableCreationQueries returns the table creation SQL statements.
func getTableCreationQueries() []string {
	return []string{
		// Play history - append-only log of play events from media servers.
		// viewed_at and duration are unix seconds; genres is a ';'-joined
		// list. For episodes media_key and title carry the series identity
		// so rankings group whole shows; the episode's own title is kept
		// in episode_title.
		`CREATE TABLE IF NOT EXISTS play_history (
			id UUID PRIMARY KEY,
			account_id INTEGER NOT NULL,
			username TEXT,
			media_key TEXT NOT NULL,
			media_type TEXT NOT NULL,
			title TEXT,
			episode_title TEXT,
			genres TEXT,
			thumb TEXT,
			viewed_at BIGINT NOT NULL,
			duration BIGINT NOT NULL DEFAULT 0,
			source TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,

		// Shares - public report links. Expiry and revocation are checked
		// on every resolve; expired rows are purged by the share janitor.
		`CREATE TABLE IF NOT EXISTS shares (
			id TEXT PRIMARY KEY,
			scope TEXT NOT NULL,
			scope_id INTEGER NOT NULL DEFAULT 0,
			year INTEGER NOT NULL,
			mode TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			revoked BOOLEAN NOT NULL DEFAULT FALSE
		);`,

		// Dedupe: a replayed sync page re-inserts the same events; the
		// unique index plus ON CONFLICT DO NOTHING makes that idempotent.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_history_dedup ON play_history(media_key, account_id, viewed_at);`,

		`CREATE INDEX IF NOT EXISTS idx_history_viewed_at ON play_history(viewed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_history_account_viewed ON play_history(account_id, viewed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_shares_expires_at ON shares(expires_at);`,
	}
}
