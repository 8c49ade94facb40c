// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/rewound/internal/config"
	"github.com/tomtom215/rewound/internal/models"
)

// fakeStore records batches without a real database.
type fakeStore struct {
	mu           sync.Mutex
	watermark    int64
	watermarkErr error
	insertErr    error
	duplicates   int // reported per batch
	batches      [][]models.PlayHistoryRecord
}

func (f *fakeStore) LatestViewedAt(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.watermark, f.watermarkErr
}

func (f *fakeStore) InsertPlayHistoryBatch(_ context.Context, recs []models.PlayHistoryRecord) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return 0, 0, f.insertErr
	}
	f.batches = append(f.batches, recs)
	return len(recs), f.duplicates, nil
}

func (f *fakeStore) stored() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, b := range f.batches {
		total += len(b)
	}
	return total
}

// fakeSource serves a fixed record set, optionally failing the first few
// fetches to exercise retry.
type fakeSource struct {
	mu       sync.Mutex
	records  []HistoryRecord
	failures int
	calls    int
	gotSince []time.Time
}

func newFakeSource(n int) *fakeSource {
	return &fakeSource{records: makeFakeHistorySet(n).records}
}

func (f *fakeSource) Ping(_ context.Context) error { return nil }

func (f *fakeSource) GetHistoryPage(_ context.Context, since time.Time, start, length int) (*HistoryPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.gotSince = append(f.gotSince, since)
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("transient upstream failure")
	}

	page := &HistoryPage{
		RecordsFiltered: len(f.records),
		RecordsTotal:    len(f.records),
	}
	if start < len(f.records) {
		end := start + length
		if end > len(f.records) {
			end = len(f.records)
		}
		page.Data = f.records[start:end]
	}
	return page, nil
}

func (f *fakeSource) firstSince(t *testing.T) time.Time {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.gotSince) == 0 {
		t.Fatal("no history fetches recorded")
	}
	return f.gotSince[0]
}

func testSyncConfig() *config.SyncConfig {
	return &config.SyncConfig{
		Interval:      time.Hour,
		PageSize:      10,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	}
}

func TestTriggerSync_StoresAllPages(t *testing.T) {
	store := &fakeStore{}
	source := newFakeSource(25)
	svc := NewService(source, store, testSyncConfig())

	if err := svc.TriggerSync(context.Background()); err != nil {
		t.Fatalf("TriggerSync() error = %v", err)
	}

	if got := store.stored(); got != 25 {
		t.Errorf("stored records = %d, want 25", got)
	}
	if len(store.batches) != 3 {
		t.Errorf("batch count = %d, want 3", len(store.batches))
	}

	st := svc.Status()
	if st.LastAdded != 25 {
		t.Errorf("Status().LastAdded = %d, want 25", st.LastAdded)
	}
	if st.LastError != "" {
		t.Errorf("Status().LastError = %q, want empty", st.LastError)
	}
	if st.LastSyncAt == nil {
		t.Error("Status().LastSyncAt = nil, want set after sync")
	}
	if st.Running {
		t.Error("Status().Running = true after sync finished")
	}
}

func TestTriggerSync_UsesWatermark(t *testing.T) {
	watermark := int64(1735735200)
	store := &fakeStore{watermark: watermark}
	source := newFakeSource(5)
	svc := NewService(source, store, testSyncConfig())

	if err := svc.TriggerSync(context.Background()); err != nil {
		t.Fatalf("TriggerSync() error = %v", err)
	}

	want := time.Unix(watermark, 0).UTC()
	if got := source.firstSince(t); !got.Equal(want) {
		t.Errorf("fetch since = %v, want %v", got, want)
	}
}

func TestTriggerSync_EmptyLogFetchesEverything(t *testing.T) {
	store := &fakeStore{}
	source := newFakeSource(5)
	svc := NewService(source, store, testSyncConfig())

	if err := svc.TriggerSync(context.Background()); err != nil {
		t.Fatalf("TriggerSync() error = %v", err)
	}

	if got := source.firstSince(t); !got.IsZero() {
		t.Errorf("fetch since = %v, want zero time for empty log", got)
	}
}

func TestTriggerSync_SkipsUnmappableRecords(t *testing.T) {
	source := newFakeSource(4)
	// Two records lose their account identity on the wire.
	source.records[1].UserID = nil
	source.records[3].UserID = intPtr(0)

	store := &fakeStore{}
	svc := NewService(source, store, testSyncConfig())

	if err := svc.TriggerSync(context.Background()); err != nil {
		t.Fatalf("TriggerSync() error = %v", err)
	}

	if got := store.stored(); got != 2 {
		t.Errorf("stored records = %d, want 2 after skipping unmappable rows", got)
	}
}

func TestTriggerSync_WatermarkError(t *testing.T) {
	store := &fakeStore{watermarkErr: errors.New("disk on fire")}
	source := newFakeSource(5)
	svc := NewService(source, store, testSyncConfig())

	err := svc.TriggerSync(context.Background())
	if err == nil {
		t.Fatal("TriggerSync() error = nil, want watermark error")
	}
	if !strings.Contains(err.Error(), "watermark") {
		t.Errorf("error = %v, want watermark load failure", err)
	}

	if st := svc.Status(); st.LastError == "" {
		t.Error("Status().LastError empty after failed sync")
	}
}

func TestTriggerSync_StoreErrorAborts(t *testing.T) {
	store := &fakeStore{insertErr: errors.New("constraint violation")}
	source := newFakeSource(5)
	svc := NewService(source, store, testSyncConfig())

	callbackRuns := 0
	svc.SetOnSyncCompleted(func(_ int, _ time.Duration) {
		callbackRuns++
	})

	err := svc.TriggerSync(context.Background())
	if err == nil {
		t.Fatal("TriggerSync() error = nil, want store error")
	}
	if !strings.Contains(err.Error(), "failed to store history batch") {
		t.Errorf("error = %v, want store failure", err)
	}
	if callbackRuns != 0 {
		t.Errorf("callback ran %d times after failed sync, want 0", callbackRuns)
	}
}

func TestTriggerSync_RetriesTransientFetchFailures(t *testing.T) {
	store := &fakeStore{}
	source := newFakeSource(5)
	source.failures = 2 // fewer than RetryAttempts

	svc := NewService(source, store, testSyncConfig())

	if err := svc.TriggerSync(context.Background()); err != nil {
		t.Fatalf("TriggerSync() error = %v", err)
	}
	if got := store.stored(); got != 5 {
		t.Errorf("stored records = %d, want 5 after retries", got)
	}
	if source.calls != 3 {
		t.Errorf("fetch calls = %d, want 3 (2 failures + 1 success)", source.calls)
	}
}

func TestTriggerSync_RetryExhaustion(t *testing.T) {
	store := &fakeStore{}
	source := newFakeSource(5)
	source.failures = 10 // more than RetryAttempts

	svc := NewService(source, store, testSyncConfig())

	err := svc.TriggerSync(context.Background())
	if err == nil {
		t.Fatal("TriggerSync() error = nil, want retry exhaustion")
	}
	if !strings.Contains(err.Error(), "max retry attempts reached") {
		t.Errorf("error = %v, want max retry attempts reached", err)
	}
}

func TestTriggerSync_Callback(t *testing.T) {
	store := &fakeStore{duplicates: 1}
	source := newFakeSource(12)
	svc := NewService(source, store, testSyncConfig())

	var gotAdded int
	var gotDuration time.Duration
	svc.SetOnSyncCompleted(func(added int, duration time.Duration) {
		gotAdded = added
		gotDuration = duration
	})

	if err := svc.TriggerSync(context.Background()); err != nil {
		t.Fatalf("TriggerSync() error = %v", err)
	}

	if gotAdded != 12 {
		t.Errorf("callback added = %d, want 12", gotAdded)
	}
	if gotDuration <= 0 {
		t.Errorf("callback duration = %v, want positive", gotDuration)
	}

	// Two pages, one reported duplicate each.
	if st := svc.Status(); st.LastDuplicates != 2 {
		t.Errorf("Status().LastDuplicates = %d, want 2", st.LastDuplicates)
	}
}

func TestStatus_BeforeFirstSync(t *testing.T) {
	svc := NewService(newFakeSource(0), &fakeStore{}, testSyncConfig())

	st := svc.Status()
	if !st.Enabled {
		t.Error("Status().Enabled = false, want true")
	}
	if st.Running {
		t.Error("Status().Running = true before any sync")
	}
	if st.LastSyncAt != nil {
		t.Errorf("Status().LastSyncAt = %v, want nil before any sync", st.LastSyncAt)
	}
}

func TestServe_RunsStartupSyncAndStopsOnCancel(t *testing.T) {
	store := &fakeStore{}
	source := newFakeSource(5)
	cfg := testSyncConfig()
	cfg.OnStartup = true

	svc := NewService(source, store, cfg)

	synced := make(chan int, 1)
	svc.SetOnSyncCompleted(func(added int, _ time.Duration) {
		synced <- added
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	select {
	case added := <-synced:
		if added != 5 {
			t.Errorf("startup sync added = %d, want 5", added)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("startup sync did not complete")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not exit after cancellation")
	}
}

func TestService_String(t *testing.T) {
	t.Parallel()

	svc := NewService(nil, nil, testSyncConfig())
	if got := svc.String(); got != "ingest-sync" {
		t.Errorf("String() = %q, want \"ingest-sync\"", got)
	}
}
