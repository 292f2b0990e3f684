package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/internal/core/ports/mocks"
)

type countingMetrics struct {
	saves     atomic.Int32
	failures  atomic.Int32
	coalesced atomic.Int32
}

func (m *countingMetrics) SaveSucceeded() { m.saves.Add(1) }
func (m *countingMetrics) SaveFailed()    { m.failures.Add(1) }
func (m *countingMetrics) EditCoalesced() { m.coalesced.Add(1) }

func newTestAutosave(t *testing.T, wait time.Duration) (*AutosaveService, *mocks.MockDatastore, *countingMetrics, chan SaveResult) {
	t.Helper()
	store := mocks.NewMockDatastore()
	repo := NewFileRepository(store, nil, fixedClock(1_000))
	metrics := &countingMetrics{}
	results := make(chan SaveResult, 64)
	svc := NewAutosaveService(repo, AutosaveOptions{
		Wait:    wait,
		Metrics: metrics,
		OnSaved: func(r SaveResult) { results <- r },
	})
	t.Cleanup(svc.Close)
	return svc, store, metrics, results
}

func waitForSave(t *testing.T, results chan SaveResult) SaveResult {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for save")
		return SaveResult{}
	}
}

func TestAutosaveCoalescesBurst(t *testing.T) {
	svc, store, metrics, results := newTestAutosave(t, 100*time.Millisecond)
	ctx := context.Background()

	for _, text := range []string{"c", "co", "con", "cons", "const"} {
		if err := svc.Change(ctx, "", "main.js", text); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	r := waitForSave(t, results)
	if r.Err != nil {
		t.Fatalf("save failed: %v", r.Err)
	}
	if r.Record.Data != "const" {
		t.Errorf("expected last edit to be saved, got %q", r.Record.Data)
	}

	select {
	case extra := <-results:
		t.Errorf("unexpected extra save: %+v", extra)
	case <-time.After(250 * time.Millisecond):
	}

	if store.Count() != 1 {
		t.Errorf("expected 1 record, got %d", store.Count())
	}
	if metrics.saves.Load() != 1 || metrics.coalesced.Load() != 4 {
		t.Errorf("saves=%d coalesced=%d", metrics.saves.Load(), metrics.coalesced.Load())
	}
}

func TestAutosaveReusesAssignedID(t *testing.T) {
	svc, store, _, results := newTestAutosave(t, 20*time.Millisecond)
	ctx := context.Background()

	if err := svc.Change(ctx, "", "app.js", "v1"); err != nil {
		t.Fatal(err)
	}
	first := waitForSave(t, results)

	if err := svc.Change(ctx, "", "app.js", "v2"); err != nil {
		t.Fatal(err)
	}
	second := waitForSave(t, results)

	if first.Record.ID != second.Record.ID {
		t.Errorf("second save created a new record: %s vs %s", first.Record.ID, second.Record.ID)
	}
	if store.Count() != 1 {
		t.Errorf("expected 1 record, got %d", store.Count())
	}
	if got := svc.AssignedID("name:app.js"); got != first.Record.ID {
		t.Errorf("AssignedID = %q, want %q", got, first.Record.ID)
	}
}

func TestAutosaveSeparateFiles(t *testing.T) {
	svc, store, _, results := newTestAutosave(t, 20*time.Millisecond)
	ctx := context.Background()

	_ = svc.Change(ctx, "", "a.js", "a")
	_ = svc.Change(ctx, "", "b.css", "b")
	waitForSave(t, results)
	waitForSave(t, results)

	if store.Count() != 2 {
		t.Errorf("expected 2 records, got %d", store.Count())
	}
}

func TestAutosaveCloseFlushesPending(t *testing.T) {
	svc, store, _, _ := newTestAutosave(t, time.Hour)
	ctx := context.Background()

	store.Seed(domain.FileRecord{ID: "known", Name: "main.js", Timestamp: 5})
	if err := svc.Change(ctx, "known", "main.js", "last words"); err != nil {
		t.Fatal(err)
	}
	if !svc.Pending() {
		t.Fatal("expected a pending write")
	}

	svc.Close()

	if svc.Pending() {
		t.Error("write still pending after Close")
	}
	raw, ok := store.Raw("known")
	if !ok || raw.Data == "" {
		t.Fatal("pending edit was not flushed")
	}
	if err := svc.Change(ctx, "known", "main.js", "late"); !errors.Is(err, ErrAutosaveClosed) {
		t.Errorf("expected ErrAutosaveClosed, got %v", err)
	}
}

func TestAutosaveFailureIsReported(t *testing.T) {
	svc, store, metrics, results := newTestAutosave(t, 10*time.Millisecond)
	store.SetShouldFail("put", errors.New("disk full"))

	_ = svc.Change(context.Background(), "", "a.js", "x")
	r := waitForSave(t, results)

	if !errors.Is(r.Err, domain.ErrStorageWriteFailed) {
		t.Errorf("expected write failure, got %v", r.Err)
	}
	if r.Record != nil {
		t.Error("expected nil record on failure")
	}
	if metrics.failures.Load() != 1 {
		t.Errorf("expected 1 failure, got %d", metrics.failures.Load())
	}
}

func TestAutosaveRejectsInvalidName(t *testing.T) {
	svc, _, _, _ := newTestAutosave(t, 10*time.Millisecond)
	if err := svc.Change(context.Background(), "", "  ", "x"); !errors.Is(err, domain.ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
}

func TestAutosaveSurvivesCanceledContext(t *testing.T) {
	svc, _, _, results := newTestAutosave(t, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	_ = svc.Change(ctx, "", "a.js", "x")
	cancel()

	if r := waitForSave(t, results); r.Err != nil {
		t.Errorf("save should not observe caller cancellation: %v", r.Err)
	}
}

func TestAutosaveChangeRacingClose(t *testing.T) {
	const writers = 8
	const edits = 50

	for round := 0; round < 5; round++ {
		store := mocks.NewMockDatastore()
		repo := NewFileRepository(store, nil, fixedClock(1_000))
		var saved atomic.Int32
		svc := NewAutosaveService(repo, AutosaveOptions{
			Wait:    2 * time.Millisecond,
			OnSaved: func(SaveResult) { saved.Add(1) },
		})

		lastAccepted := make([]string, writers)
		var wg sync.WaitGroup
		for w := 0; w < writers; w++ {
			w := w
			wg.Add(1)
			go func() {
				defer wg.Done()
				name := fmt.Sprintf("f%d.js", w)
				for i := 0; i < edits; i++ {
					text := fmt.Sprintf("%d-%d", w, i)
					if err := svc.Change(context.Background(), "", name, text); err != nil {
						if !errors.Is(err, ErrAutosaveClosed) {
							t.Errorf("unexpected error: %v", err)
						}
						return
					}
					lastAccepted[w] = text
				}
			}()
		}

		time.Sleep(time.Duration(round) * time.Millisecond)
		svc.Close()
		wg.Wait()

		if svc.Pending() {
			t.Fatalf("round %d: write pending after Close", round)
		}

		stored := make(map[string]string)
		for _, f := range repo.GetAllFiles(context.Background()) {
			stored[f.Name] = f.Data
		}
		for w, want := range lastAccepted {
			if want == "" {
				continue
			}
			name := fmt.Sprintf("f%d.js", w)
			if stored[name] != want {
				t.Errorf("round %d: %s = %q, want last accepted edit %q", round, name, stored[name], want)
			}
		}

		after := saved.Load()
		time.Sleep(20 * time.Millisecond)
		if saved.Load() != after {
			t.Errorf("round %d: %d write(s) landed after Close returned", round, saved.Load()-after)
		}
	}
}
