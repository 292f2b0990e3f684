package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/internal/core/ports"
	"github.com/tunedinout/esfiddle/pkg/debounce"
)

// DefaultAutosaveWait is the quiet period before an edit is written
const DefaultAutosaveWait = 300 * time.Millisecond

// ErrAutosaveClosed is returned by Change after Close
var ErrAutosaveClosed = errors.New("autosave is closed")

// AutosaveMetrics receives save outcomes
type AutosaveMetrics interface {
	SaveSucceeded()
	SaveFailed()
	EditCoalesced()
}

// SaveResult reports one debounced write
type SaveResult struct {
	Key    string
	Record *domain.FileRecord // nil when the write failed
	Err    error
}

// AutosaveService writes editor changes to the repository once typing pauses.
// Only the last edit of a burst is guaranteed to be persisted.
type AutosaveService struct {
	files   ports.FileStore
	wait    time.Duration
	logger  *zap.Logger
	metrics AutosaveMetrics
	onSaved func(SaveResult)

	mu      sync.Mutex
	entries map[string]*autosaveEntry
	closed  bool
}

type autosaveEntry struct {
	key       string
	debouncer *debounce.Debouncer[edit]
	seq       uint64 // last edit scheduled, guarded by AutosaveService.mu

	mu      sync.Mutex // serializes writes for this key
	id      string     // assigned id once the first write succeeded
	written uint64     // seq of the last edit stored
}

type edit struct {
	ctx  context.Context
	seq  uint64
	name string
	text string
}

// AutosaveOptions configures an AutosaveService
type AutosaveOptions struct {
	Wait    time.Duration
	Logger  *zap.Logger
	Metrics AutosaveMetrics
	OnSaved func(SaveResult)
}

// NewAutosaveService creates an autosave pipeline in front of files
func NewAutosaveService(files ports.FileStore, opts AutosaveOptions) *AutosaveService {
	wait := opts.Wait
	if wait <= 0 {
		wait = DefaultAutosaveWait
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutosaveService{
		files:   files,
		wait:    wait,
		logger:  logger.Named("autosave"),
		metrics: opts.Metrics,
		onSaved: opts.OnSaved,
		entries: make(map[string]*autosaveEntry),
	}
}

// Change schedules a write of text for the file id. An empty id means a new
// file; it is keyed by name until the first write assigns an id.
func (s *AutosaveService) Change(ctx context.Context, id, name, text string) error {
	if err := domain.ValidateName(name); err != nil {
		return err
	}
	key := id
	if key == "" {
		key = "name:" + name
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrAutosaveClosed
	}
	entry, ok := s.entries[key]
	if !ok {
		entry = &autosaveEntry{key: key, id: id}
		entry.debouncer = debounce.New(func(e edit) { s.save(entry, e) }, s.wait)
		s.entries[key] = entry
	}

	// Scheduling under mu means Close either sees this edit pending or rejects it
	if entry.debouncer.Pending() && s.metrics != nil {
		s.metrics.EditCoalesced()
	}
	entry.seq++
	entry.debouncer.Call(edit{ctx: context.WithoutCancel(ctx), seq: entry.seq, name: name, text: text})
	s.mu.Unlock()
	return nil
}

// AssignedID returns the id a new file received after its first write
func (s *AutosaveService) AssignedID(key string) string {
	s.mu.Lock()
	entry, ok := s.entries[key]
	s.mu.Unlock()
	if !ok {
		return ""
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.id
}

// Pending reports whether any write is still waiting for its quiet period
func (s *AutosaveService) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.entries {
		if entry.debouncer.Pending() {
			return true
		}
	}
	return false
}

// Flush writes every pending edit now
func (s *AutosaveService) Flush() {
	for _, entry := range s.snapshot() {
		entry.debouncer.Flush()
		entry.debouncer.Wait()
	}
}

// Close flushes pending edits, cancels the debouncers and rejects further changes
func (s *AutosaveService) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	// No Change can schedule once closed is set, so flushing and cancelling
	// each debouncer leaves nothing to fire after Close returns
	for _, entry := range s.snapshot() {
		entry.debouncer.Flush()
		entry.debouncer.CleanUp()
		entry.debouncer.Wait()
	}
}

func (s *AutosaveService) snapshot() []*autosaveEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*autosaveEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry)
	}
	return out
}

func (s *AutosaveService) save(entry *autosaveEntry, e edit) {
	rec, stale, err := s.write(entry, e)
	if stale {
		s.logger.Debug("skipped stale edit", zap.String("op", "save"), zap.String("key", entry.key))
		return
	}

	if err != nil {
		s.logger.Error("autosave failed", zap.String("op", "save"), zap.String("key", entry.key), zap.Error(err))
		if s.metrics != nil {
			s.metrics.SaveFailed()
		}
	} else {
		s.logger.Debug("autosaved", zap.String("op", "save"), zap.String("id", rec.ID), zap.Int("bytes", len(e.text)))
		if s.metrics != nil {
			s.metrics.SaveSucceeded()
		}
	}

	if s.onSaved != nil {
		s.onSaved(SaveResult{Key: entry.key, Record: rec, Err: err})
	}
}

// write stores e unless a newer edit for the same key was already stored
func (s *AutosaveService) write(entry *autosaveEntry, e edit) (*domain.FileRecord, bool, error) {
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if e.seq <= entry.written {
		return nil, true, nil
	}
	rec, err := s.files.StoreFile(e.ctx, domain.FileRecord{ID: entry.id, Name: e.name, Data: e.text})
	if err != nil {
		return nil, false, err
	}
	entry.id = rec.ID
	entry.written = e.seq
	return rec, false, nil
}
