package mocks

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/internal/core/ports"
)

// MockDatastore is an in-memory implementation of the Datastore port for testing
type MockDatastore struct {
	mu      sync.RWMutex
	records map[string]domain.FileRecord
	fail    map[string]error
	calls   []string
	closed  bool
}

// NewMockDatastore creates a new mock datastore
func NewMockDatastore() *MockDatastore {
	return &MockDatastore{
		records: make(map[string]domain.FileRecord),
		fail:    make(map[string]error),
	}
}

var _ ports.Datastore = (*MockDatastore)(nil)

// SetShouldFail makes the named operation ("get", "put", "update", "delete",
// "getAll", "getMostRecent") fail with err. A nil err clears the failure.
func (m *MockDatastore) SetShouldFail(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fail, op)
		return
	}
	m.fail[op] = err
}

func (m *MockDatastore) record(op string) error {
	m.calls = append(m.calls, op)
	if err, ok := m.fail[op]; ok {
		return domain.NewIOError(op, err)
	}
	return nil
}

func (m *MockDatastore) Get(ctx context.Context, id string) (*domain.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("get"); err != nil {
		return nil, err
	}
	rec, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *MockDatastore) Put(ctx context.Context, record domain.FileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("put"); err != nil {
		return err
	}
	m.records[record.ID] = record
	return nil
}

func (m *MockDatastore) Update(ctx context.Context, id string, fn func(existing *domain.FileRecord) (*domain.FileRecord, error)) (*domain.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("update"); err != nil {
		return nil, err
	}

	var existing *domain.FileRecord
	if rec, ok := m.records[id]; ok {
		existing = &rec
	}

	next, err := fn(existing)
	if errors.Is(err, ports.ErrSkipWrite) {
		return existing, nil
	}
	if err != nil {
		return nil, domain.NewIOError("update", err)
	}
	m.records[next.ID] = *next
	out := *next
	return &out, nil
}

func (m *MockDatastore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("delete"); err != nil {
		return err
	}
	delete(m.records, id)
	return nil
}

func (m *MockDatastore) GetAll(ctx context.Context) ([]domain.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("getAll"); err != nil {
		return nil, err
	}
	out := make([]domain.FileRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MockDatastore) GetMostRecentByTimestamp(ctx context.Context) (*domain.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("getMostRecent"); err != nil {
		return nil, err
	}
	var best *domain.FileRecord
	for _, rec := range m.records {
		rec := rec
		if best == nil || rec.Timestamp > best.Timestamp ||
			(rec.Timestamp == best.Timestamp && rec.ID > best.ID) {
			best = &rec
		}
	}
	return best, nil
}

func (m *MockDatastore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Raw returns the stored record without decoding (for assertions)
func (m *MockDatastore) Raw(id string) (domain.FileRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	return rec, ok
}

// Seed stores a record directly, bypassing failure injection
func (m *MockDatastore) Seed(record domain.FileRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = record
}

// Count returns the number of stored records
func (m *MockDatastore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// GetCalls returns the operations invoked so far
func (m *MockDatastore) GetCalls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	calls := make([]string, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// Closed reports whether Close was called
func (m *MockDatastore) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}
