// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/rewound/internal/anonymize"
	"github.com/tomtom215/rewound/internal/config"
	"github.com/tomtom215/rewound/internal/ingest"
	"github.com/tomtom215/rewound/internal/models"
	"github.com/tomtom215/rewound/internal/share"
	"github.com/tomtom215/rewound/internal/stats"
)

// fakeLog is an in-memory stats.EventLog seeded with play history.
type fakeLog struct {
	records  []models.PlayHistoryRecord
	failWith error
}

func (f *fakeLog) RecordsForUser(_ context.Context, accountID int, filter stats.YearFilter) ([]models.PlayHistoryRecord, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []models.PlayHistoryRecord
	for _, rec := range f.records {
		if rec.AccountID == accountID && filter.Contains(rec.ViewedAt) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeLog) RecordsForServer(_ context.Context, filter stats.YearFilter) ([]models.PlayHistoryRecord, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []models.PlayHistoryRecord
	for _, rec := range f.records {
		if filter.Contains(rec.ViewedAt) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeLog) UserWatchTotals(_ context.Context, filter stats.YearFilter) ([]models.UserWatchTotal, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	totals := make(map[int]*models.UserWatchTotal)
	var order []int
	for _, rec := range f.records {
		if !filter.Contains(rec.ViewedAt) {
			continue
		}
		total, ok := totals[rec.AccountID]
		if !ok {
			total = &models.UserWatchTotal{UserID: rec.AccountID, Username: rec.Username}
			totals[rec.AccountID] = total
			order = append(order, rec.AccountID)
		}
		total.TotalSeconds += rec.Duration
		total.Plays++
	}
	out := make([]models.UserWatchTotal, 0, len(order))
	for _, id := range order {
		out = append(out, *totals[id])
	}
	return out, nil
}

// fakeShareStore is an in-memory share.Store.
type fakeShareStore struct {
	mu     sync.Mutex
	shares map[string]*models.Share
}

func newFakeShareStore() *fakeShareStore {
	return &fakeShareStore{shares: make(map[string]*models.Share)}
}

func (f *fakeShareStore) InsertShare(_ context.Context, sh *models.Share) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *sh
	f.shares[sh.ID] = &stored
	return nil
}

func (f *fakeShareStore) GetShareByID(_ context.Context, id string) (*models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sh, ok := f.shares[id]
	if !ok {
		return nil, nil
	}
	out := *sh
	return &out, nil
}

func (f *fakeShareStore) RevokeShare(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sh, ok := f.shares[id]
	if !ok {
		return false, nil
	}
	sh.Revoked = true
	return true, nil
}

func (f *fakeShareStore) DeleteExpiredShares(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for id, sh := range f.shares {
		if sh.ExpiresAt.Before(before) {
			delete(f.shares, id)
			removed++
		}
	}
	return removed, nil
}

// fakeHistorySource satisfies ingest.HistorySource for health checks.
type fakeHistorySource struct {
	pingErr error
}

func (f *fakeHistorySource) Ping(_ context.Context) error {
	return f.pingErr
}

func (f *fakeHistorySource) GetHistoryPage(_ context.Context, _ time.Time, _, _ int) (*ingest.HistoryPage, error) {
	return nil, nil
}

func seedRecords() []models.PlayHistoryRecord {
	viewed := func(month time.Month, day, hour int) int64 {
		return time.Date(2025, month, day, hour, 0, 0, 0, time.UTC).Unix()
	}
	return []models.PlayHistoryRecord{
		{AccountID: 1, Username: "alice", MediaKey: "m-100", MediaType: models.MediaTypeMovie, Title: "Heat", Genres: []string{"Crime", "Thriller"}, ViewedAt: viewed(time.February, 10, 20), Duration: 7200},
		{AccountID: 1, Username: "alice", MediaKey: "m-101", MediaType: models.MediaTypeMovie, Title: "Ronin", Genres: []string{"Action"}, ViewedAt: viewed(time.March, 5, 21), Duration: 6600},
		{AccountID: 1, Username: "alice", MediaKey: "s-200", MediaType: models.MediaTypeEpisode, Title: "Severance", EpisodeTitle: "Half Loop", Genres: []string{"Drama"}, ViewedAt: viewed(time.June, 12, 22), Duration: 3300},
		{AccountID: 2, Username: "bob", MediaKey: "m-100", MediaType: models.MediaTypeMovie, Title: "Heat", Genres: []string{"Crime", "Thriller"}, ViewedAt: viewed(time.August, 1, 19), Duration: 7200},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:              "127.0.0.1",
			Port:              8484,
			Environment:       "development",
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Tautulli: config.TautulliConfig{Enabled: false},
		Share: config.ShareConfig{
			Secret:          "test-secret",
			RateLimitReqs:   30,
			RateLimitWindow: time.Minute,
		},
		Anonymize: config.AnonymizeConfig{
			DefaultMode: "none",
			Salt:        "test-salt",
		},
	}
}

// setupTestHandler builds a handler over in-memory fakes: seeded event
// log, map-backed share store, no real database.
func setupTestHandler(t *testing.T) *Handler {
	t.Helper()

	log := &fakeLog{records: seedRecords()}
	anonymizer, err := anonymize.New(models.AnonymizeNone, "test-salt")
	if err != nil {
		t.Fatalf("Failed to create anonymizer: %v", err)
	}

	engine := stats.NewEngine(log, nil, anonymizer, stats.DefaultConfig())

	issuer, err := share.NewTokenIssuer("test-secret")
	if err != nil {
		t.Fatalf("Failed to create token issuer: %v", err)
	}
	shares := share.NewService(newFakeShareStore(), issuer, share.DefaultConfig())

	return &Handler{
		engine:     engine,
		anonymizer: anonymizer,
		shares:     shares,
		config:     testConfig(),
		startTime:  time.Now(),
	}
}

// decodeEnvelope parses a recorded response body into the API envelope.
func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()

	var resp models.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response envelope: %v, body: %s", err, w.Body.String())
	}
	return resp
}

// dataField digs one key out of the envelope's data object.
func dataField(t *testing.T, resp models.APIResponse, key string) interface{} {
	t.Helper()

	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Response data is %T, want object", resp.Data)
	}
	return data[key]
}
