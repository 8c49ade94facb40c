// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/rewound/internal/metrics"
	"github.com/tomtom215/rewound/internal/models"
)

// InsertShare stores a new share record.
func (db *DB) InsertShare(ctx context.Context, share *models.Share) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) {
		metrics.RecordDBQuery("insert", "shares", time.Since(start), err)
	}(time.Now())

	query := `INSERT INTO shares (id, scope, scope_id, year, mode, created_at, expires_at, revoked)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = db.conn.ExecContext(ctx, query,
		share.ID, string(share.Scope), share.ScopeID, share.Year, string(share.Mode),
		share.CreatedAt, share.ExpiresAt, share.Revoked,
	)
	if err != nil {
		return fmt.Errorf("failed to insert share: %w", err)
	}
	return nil
}

// GetShareByID retrieves a share record by its ID.
// Returns nil, nil when no share exists (not an error condition).
func (db *DB) GetShareByID(ctx context.Context, id string) (share *models.Share, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) {
		metrics.RecordDBQuery("select", "shares", time.Since(start), err)
	}(time.Now())

	query := `SELECT id, scope, scope_id, year, mode, created_at, expires_at, revoked
		FROM shares WHERE id = ?`

	var s models.Share
	var scope, mode string
	err = db.conn.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &scope, &s.ScopeID, &s.Year, &mode,
		&s.CreatedAt, &s.ExpiresAt, &s.Revoked,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan share: %w", err)
	}

	s.Scope = models.StatsScope(scope)
	s.Mode = models.AnonymizeMode(mode)
	return &s, nil
}

// RevokeShare marks a share as revoked. Returns false when no share with
// the given ID exists. Revoking an already revoked share is a no-op that
// still reports found.
func (db *DB) RevokeShare(ctx context.Context, id string) (found bool, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) {
		metrics.RecordDBQuery("revoke", "shares", time.Since(start), err)
	}(time.Now())

	result, err := db.conn.ExecContext(ctx, `UPDATE shares SET revoked = TRUE WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to revoke share: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get revoked share count: %w", err)
	}
	return rowsAffected > 0, nil
}

// DeleteExpiredShares removes shares whose expiry is at or before the
// given time. Returns the number of rows deleted.
func (db *DB) DeleteExpiredShares(ctx context.Context, before time.Time) (deleted int64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) {
		metrics.RecordDBQuery("purge", "shares", time.Since(start), err)
	}(time.Now())

	result, err := db.conn.ExecContext(ctx, `DELETE FROM shares WHERE expires_at <= ?`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired shares: %w", err)
	}

	deleted, err = result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get deleted share count: %w", err)
	}
	return deleted, nil
}
