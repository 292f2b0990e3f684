package ports

import (
	"context"
	"errors"

	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/pkg/retry"
)

// ErrSkipWrite tells Datastore.Update to leave the record untouched
var ErrSkipWrite = errors.New("skip write")

// Datastore defines the port for the local embedded store.
// Every method runs in exactly one transaction.
type Datastore interface {
	// Get returns the stored record or nil when absent
	Get(ctx context.Context, id string) (*domain.FileRecord, error)

	// Put inserts or replaces a record by id
	Put(ctx context.Context, record domain.FileRecord) error

	// Update reads the record for id (nil if absent) and writes what fn returns,
	// all inside one read-write transaction
	Update(ctx context.Context, id string, fn func(existing *domain.FileRecord) (*domain.FileRecord, error)) (*domain.FileRecord, error)

	// Delete removes a record; a missing id is not an error
	Delete(ctx context.Context, id string) error

	// GetAll returns every record ordered by timestamp then id
	GetAll(ctx context.Context) ([]domain.FileRecord, error)

	// GetMostRecentByTimestamp returns the newest record or nil when empty
	GetMostRecentByTimestamp(ctx context.Context) (*domain.FileRecord, error)

	// Close releases the store
	Close() error
}

// FileStore defines the domain API the CLI and autosave consume
type FileStore interface {
	StoreFile(ctx context.Context, file domain.FileRecord) (*domain.FileRecord, error)
	GetFileByID(ctx context.Context, id string) (string, bool)
	GetRecord(ctx context.Context, id string) *domain.FileRecord
	GetAllFiles(ctx context.Context) []domain.FileRecord
	LoadLastUsedFile(ctx context.Context) *domain.FileRecord
	RemoveFile(ctx context.Context, id string) (string, bool)
}

// CredentialStore defines the port for the locally cached login snapshots
type CredentialStore interface {
	// Latest returns the most recently obtained snapshot, or nil when the cache is empty
	Latest(ctx context.Context) (*domain.Credential, error)
}

// AuthClient fetches the authorization URL used to (re)authenticate
type AuthClient interface {
	AuthURL(ctx context.Context) (string, error)
}

// Navigator hands a URL over to the user's browser
type Navigator interface {
	Open(ctx context.Context, url string) error
}

// SessionLister lists playground sessions saved on the remote drive
type SessionLister interface {
	ListSessions(ctx context.Context, accessToken, folderID string) retry.Result[[]domain.RemoteSession]
}
