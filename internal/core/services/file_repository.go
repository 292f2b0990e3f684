package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/internal/core/ports"
	"github.com/tunedinout/esfiddle/pkg/encoding"
)

// FileRepository is the domain-level API over the local datastore.
// Content is encoded before it is written and decoded on the way out.
type FileRepository struct {
	store  ports.Datastore
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

var _ ports.FileStore = (*FileRepository)(nil)

// NewFileRepository creates a repository over store. A nil clock means time.Now.
func NewFileRepository(store ports.Datastore, logger *zap.Logger, clock func() time.Time) *FileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = time.Now
	}
	return &FileRepository{
		store:  store,
		logger: logger.Named("repository"),
		now:    clock,
		newID:  func() string { return uuid.New().String() },
	}
}

// StoreFile upserts file and returns the stored record with decoded content.
//
// A known id keeps its timestamp; the timestamp is only filled in when the stored
// record has none. An empty or unknown id gets a freshly generated one.
func (r *FileRepository) StoreFile(ctx context.Context, file domain.FileRecord) (*domain.FileRecord, error) {
	blob := string(encoding.EncodeAs(file.Data, file.Kind().MediaType()))
	stamp := file.Timestamp
	if stamp == 0 {
		stamp = domain.NowMillis(r.now())
	}

	if file.ID != "" {
		updated, err := r.store.Update(ctx, file.ID, func(existing *domain.FileRecord) (*domain.FileRecord, error) {
			if existing == nil {
				return nil, ports.ErrSkipWrite
			}
			next := *existing
			next.Name = file.Name
			next.Data = blob
			if next.Timestamp == 0 {
				next.Timestamp = stamp
			}
			return &next, nil
		})
		if err != nil {
			return nil, r.writeFailed("update", file.ID, err)
		}
		if updated != nil {
			r.logger.Debug("file updated", zap.String("op", "store"), zap.String("id", updated.ID))
			return r.decoded(*updated), nil
		}
		r.logger.Debug("unknown id, assigning a new one", zap.String("op", "store"), zap.String("id", file.ID))
	}

	record := domain.FileRecord{
		ID:        r.newID(),
		Name:      file.Name,
		Data:      blob,
		Timestamp: stamp,
	}
	if err := r.store.Put(ctx, record); err != nil {
		return nil, r.writeFailed("insert", record.ID, err)
	}

	r.logger.Debug("file created", zap.String("op", "store"), zap.String("id", record.ID))
	return r.decoded(record), nil
}

// GetFileByID returns the decoded content of id, or false when it is absent
func (r *FileRepository) GetFileByID(ctx context.Context, id string) (string, bool) {
	record, err := r.store.Get(ctx, id)
	if err != nil {
		r.logger.Error("failed to read file", zap.String("op", "get"), zap.String("id", id), zap.Error(err))
		return "", false
	}
	if record == nil {
		return "", false
	}
	return r.decode(*record), true
}

// GetRecord is GetFileByID returning the whole decoded record
func (r *FileRepository) GetRecord(ctx context.Context, id string) *domain.FileRecord {
	record, err := r.store.Get(ctx, id)
	if err != nil {
		r.logger.Error("failed to read file", zap.String("op", "get"), zap.String("id", id), zap.Error(err))
		return nil
	}
	if record == nil {
		return nil
	}
	return r.decoded(*record)
}

// GetAllFiles returns every record, decoded. It never returns nil.
func (r *FileRepository) GetAllFiles(ctx context.Context) []domain.FileRecord {
	records, err := r.store.GetAll(ctx)
	if err != nil {
		r.logger.Error("failed to list files", zap.String("op", "getAll"), zap.Error(err))
		return []domain.FileRecord{}
	}

	out := make([]domain.FileRecord, 0, len(records))
	for _, record := range records {
		out = append(out, *r.decoded(record))
	}
	return out
}

// LoadLastUsedFile returns the record with the greatest timestamp, or nil
func (r *FileRepository) LoadLastUsedFile(ctx context.Context) *domain.FileRecord {
	record, err := r.store.GetMostRecentByTimestamp(ctx)
	if err != nil {
		r.logger.Error("failed to load last used file", zap.String("op", "getMostRecent"), zap.Error(err))
		return nil
	}
	if record == nil {
		return nil
	}
	return r.decoded(*record)
}

// RemoveFile deletes id. Deleting a missing id succeeds.
func (r *FileRepository) RemoveFile(ctx context.Context, id string) (string, bool) {
	if err := r.store.Delete(ctx, id); err != nil {
		r.logger.Error("failed to delete file", zap.String("op", "delete"), zap.String("id", id), zap.Error(err))
		return "", false
	}
	r.logger.Debug("file deleted", zap.String("op", "delete"), zap.String("id", id))
	return id, true
}

func (r *FileRepository) writeFailed(op, id string, err error) error {
	r.logger.Error("failed to store file", zap.String("op", op), zap.String("id", id), zap.Error(err))
	return fmt.Errorf("%w: %w", domain.ErrStorageWriteFailed, err)
}

func (r *FileRepository) decoded(record domain.FileRecord) *domain.FileRecord {
	record.Data = r.decode(record)
	return &record
}

// decode returns the content of a stored record; a malformed blob comes back empty
func (r *FileRepository) decode(record domain.FileRecord) string {
	content, err := encoding.Decode(encoding.EncodedBlob(record.Data))
	if err != nil {
		r.logger.Warn("stored content is not decodable", zap.String("id", record.ID), zap.Error(err))
		return ""
	}
	return content
}
