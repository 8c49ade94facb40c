// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tomtom215/rewound/internal/logging"
	"github.com/tomtom215/rewound/internal/metrics"
	"github.com/tomtom215/rewound/internal/models"
	"github.com/tomtom215/rewound/internal/stats"
)

// genreSeparator joins the genre list into a single column. Genre names
// from Plex and Tautulli never contain ';'.
const genreSeparator = ";"

const insertHistoryQuery = `INSERT INTO play_history (
	id, account_id, username, media_key, media_type, title, episode_title,
	genres, thumb, viewed_at, duration, source, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT DO NOTHING`

const selectHistoryColumns = `account_id, username, media_key, media_type,
	title, episode_title, genres, thumb, viewed_at, duration, source`

// InsertPlayHistoryRecord inserts a single play event. Duplicates (same
// media_key, account_id, viewed_at) are silently skipped via ON CONFLICT
// DO NOTHING so replayed sync pages stay idempotent.
func (db *DB) InsertPlayHistoryRecord(ctx context.Context, rec *models.PlayHistoryRecord) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) {
		metrics.RecordDBQuery("insert", "play_history", time.Since(start), err)
	}(time.Now())

	result, err := db.conn.ExecContext(ctx, insertHistoryQuery,
		uuid.New(), rec.AccountID, rec.Username, rec.MediaKey, rec.MediaType,
		rec.Title, rec.EpisodeTitle, joinGenres(rec.Genres), rec.Thumb,
		rec.ViewedAt, rec.Duration, rec.Source, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert play history record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err == nil && rowsAffected == 0 {
		logging.Debug().
			Int("account_id", rec.AccountID).
			Str("media_key", rec.MediaKey).
			Int64("viewed_at", rec.ViewedAt).
			Msg("Duplicate play history record skipped")
	}
	return nil
}

// InsertPlayHistoryBatch atomically inserts a batch of play events inside
// one transaction. All inserts succeed or all are rolled back. Returns how
// many rows were inserted and how many were skipped as duplicates.
func (db *DB) InsertPlayHistoryBatch(ctx context.Context, recs []models.PlayHistoryRecord) (inserted int, duplicates int, err error) {
	if len(recs) == 0 {
		return 0, 0, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) {
		metrics.RecordDBQuery("insert_batch", "play_history", time.Since(start), err)
	}(time.Now())

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().Err(rbErr).AnErr("original_error", err).Msg("Transaction rollback failed")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertHistoryQuery)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			logging.Warn().Err(closeErr).Msg("Failed to close prepared statement")
		}
	}()

	now := time.Now().UTC()
	for i := range recs {
		rec := &recs[i]
		result, execErr := stmt.ExecContext(ctx,
			uuid.New(), rec.AccountID, rec.Username, rec.MediaKey, rec.MediaType,
			rec.Title, rec.EpisodeTitle, joinGenres(rec.Genres), rec.Thumb,
			rec.ViewedAt, rec.Duration, rec.Source, now,
		)
		if execErr != nil {
			err = fmt.Errorf("failed to insert record %d (media_key=%s): %w", i, rec.MediaKey, execErr)
			return 0, 0, err
		}

		rowsAffected, rowsErr := result.RowsAffected()
		if rowsErr != nil {
			err = fmt.Errorf("failed to get rows affected for record %d: %w", i, rowsErr)
			return 0, 0, err
		}
		if rowsAffected > 0 {
			inserted++
		} else {
			duplicates++
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if duplicates > 0 {
		logging.Debug().
			Int("inserted", inserted).
			Int("duplicates", duplicates).
			Msg("Batch insert skipped duplicates")
	}
	return inserted, duplicates, nil
}

// RecordsForUser returns all play events for one account within the year
// bounds, ordered by viewed_at ascending with media_key as the tiebreak so
// identical datasets always produce identical report output.
func (db *DB) RecordsForUser(ctx context.Context, accountID int, filter stats.YearFilter) (recs []models.PlayHistoryRecord, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) {
		metrics.RecordDBQuery("select_user", "play_history", time.Since(start), err)
	}(time.Now())

	query := fmt.Sprintf(`SELECT %s FROM play_history
		WHERE account_id = ? AND viewed_at >= ? AND viewed_at <= ?
		ORDER BY viewed_at ASC, media_key ASC`, selectHistoryColumns)

	rows, err := db.conn.QueryContext(ctx, query, accountID, filter.StartTimestamp, filter.EndTimestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to query user play history: %w", err)
	}
	defer closeQuietly(rows)

	return scanHistoryRows(rows)
}

// RecordsForServer returns all play events across every account within the
// year bounds, ordered by viewed_at ascending with media_key tiebreak.
func (db *DB) RecordsForServer(ctx context.Context, filter stats.YearFilter) (recs []models.PlayHistoryRecord, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) {
		metrics.RecordDBQuery("select_server", "play_history", time.Since(start), err)
	}(time.Now())

	query := fmt.Sprintf(`SELECT %s FROM play_history
		WHERE viewed_at >= ? AND viewed_at <= ?
		ORDER BY viewed_at ASC, media_key ASC`, selectHistoryColumns)

	rows, err := db.conn.QueryContext(ctx, query, filter.StartTimestamp, filter.EndTimestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to query server play history: %w", err)
	}
	defer closeQuietly(rows)

	return scanHistoryRows(rows)
}

// scanHistoryRows materializes a play_history result set.
func scanHistoryRows(rows *sql.Rows) ([]models.PlayHistoryRecord, error) {
	var recs []models.PlayHistoryRecord
	for rows.Next() {
		var rec models.PlayHistoryRecord
		var username, title, episodeTitle, genres, thumb, source sql.NullString
		if err := rows.Scan(
			&rec.AccountID, &username, &rec.MediaKey, &rec.MediaType,
			&title, &episodeTitle, &genres, &thumb,
			&rec.ViewedAt, &rec.Duration, &source,
		); err != nil {
			return nil, fmt.Errorf("failed to scan play history row: %w", err)
		}
		rec.Username = username.String
		rec.Title = title.String
		rec.EpisodeTitle = episodeTitle.String
		rec.Thumb = thumb.String
		rec.Source = source.String
		rec.Genres = splitGenres(genres.String)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate play history rows: %w", err)
	}
	return recs, nil
}

// UserWatchTotals returns per-account aggregate watch time and play counts
// within the year bounds, ordered by total watch time descending. The
// username is the one attached to the account's most recent play
// (arg_max), so renames show the current name.
func (db *DB) UserWatchTotals(ctx context.Context, filter stats.YearFilter) (totals []models.UserWatchTotal, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) {
		metrics.RecordDBQuery("watch_totals", "play_history", time.Since(start), err)
	}(time.Now())

	query := `SELECT
			account_id,
			COALESCE(arg_max(username, viewed_at), '') AS username,
			SUM(duration) AS total_seconds,
			COUNT(*) AS plays
		FROM play_history
		WHERE viewed_at >= ? AND viewed_at <= ?
		GROUP BY account_id
		ORDER BY total_seconds DESC, account_id ASC`

	rows, err := db.conn.QueryContext(ctx, query, filter.StartTimestamp, filter.EndTimestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to query user watch totals: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var total models.UserWatchTotal
		if err := rows.Scan(&total.UserID, &total.Username, &total.TotalSeconds, &total.Plays); err != nil {
			return nil, fmt.Errorf("failed to scan watch total row: %w", err)
		}
		totals = append(totals, total)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate watch total rows: %w", err)
	}
	return totals, nil
}

// DistinctAccountCount returns how many distinct accounts appear anywhere
// in the log. Surfaced on the health report alongside CountRecords; the
// year-scoped variant is the length of UserWatchTotals.
func (db *DB) DistinctAccountCount(ctx context.Context) (count int, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) {
		metrics.RecordDBQuery("distinct_accounts", "play_history", time.Since(start), err)
	}(time.Now())

	query := `SELECT COUNT(DISTINCT account_id) FROM play_history`

	if err := db.conn.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count distinct accounts: %w", err)
	}
	return count, nil
}

// LatestViewedAt returns the newest viewed_at in the log, or 0 when the
// log is empty. Sync uses this as its incremental watermark.
func (db *DB) LatestViewedAt(ctx context.Context) (latest int64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) {
		metrics.RecordDBQuery("watermark", "play_history", time.Since(start), err)
	}(time.Now())

	var newest sql.NullInt64
	if err := db.conn.QueryRowContext(ctx, `SELECT MAX(viewed_at) FROM play_history`).Scan(&newest); err != nil {
		return 0, fmt.Errorf("failed to query latest viewed_at: %w", err)
	}
	return newest.Int64, nil
}

// CountRecords returns the total number of play history rows.
func (db *DB) CountRecords(ctx context.Context) (count int64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) {
		metrics.RecordDBQuery("count", "play_history", time.Since(start), err)
	}(time.Now())

	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM play_history`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count play history records: %w", err)
	}
	return count, nil
}

// joinGenres flattens a genre list for storage.
func joinGenres(genres []string) string {
	if len(genres) == 0 {
		return ""
	}
	return strings.Join(genres, genreSeparator)
}

// splitGenres restores a stored genre list, dropping empty entries.
func splitGenres(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, genreSeparator)
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			genres = append(genres, p)
		}
	}
	if len(genres) == 0 {
		return nil
	}
	return genres
}
