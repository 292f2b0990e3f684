package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tunedinout/esfiddle/internal/core/domain"
)

// MaxSnapshots bounds how many login snapshots the cache keeps
const MaxSnapshots = 10

// document is the on-disk shape of credentials.yaml
type document struct {
	Snapshots []domain.Credential `yaml:"snapshots"`
}

// FileStore caches login snapshots in a YAML file
type FileStore struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
	now    func() time.Time
}

// NewFileStore creates a store backed by path
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{
		path:   path,
		logger: logger.Named("credentials"),
		now:    time.Now,
	}
}

// Path returns the cache file location
func (s *FileStore) Path() string {
	return s.path
}

// Latest returns the snapshot with the greatest ObtainedAt, or nil if the cache is empty
func (s *FileStore) Latest(ctx context.Context) (*domain.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	doc, err := s.read()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if len(doc.Snapshots) == 0 {
		return nil, nil
	}

	latest := doc.Snapshots[0]
	for _, snap := range doc.Snapshots[1:] {
		if snap.ObtainedAt >= latest.ObtainedAt {
			latest = snap
		}
	}

	enrichFromToken(&latest, s.logger)
	return &latest, nil
}

// Save appends a snapshot, stamping ObtainedAt when it is unset
func (s *FileStore) Save(ctx context.Context, cred domain.Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !cred.HasTokens() {
		return fmt.Errorf("credential must carry both an access and a refresh token")
	}
	if cred.ObtainedAt == 0 {
		cred.ObtainedAt = s.now().UnixMilli()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Snapshots = append(doc.Snapshots, cred)
	if len(doc.Snapshots) > MaxSnapshots {
		doc.Snapshots = doc.Snapshots[len(doc.Snapshots)-MaxSnapshots:]
	}

	if err := s.write(doc); err != nil {
		return err
	}
	s.logger.Info("credential snapshot saved",
		zap.String("op", "save"),
		zap.Int("snapshots", len(doc.Snapshots)),
	)
	return nil
}

// Import reads a JSON token payload written by the browser auth flow and saves it
func (s *FileStore) Import(ctx context.Context, r io.Reader) (*domain.Credential, error) {
	var cred domain.Credential
	if err := json.NewDecoder(r).Decode(&cred); err != nil {
		return nil, fmt.Errorf("failed to parse credential payload: %w", err)
	}
	if cred.ObtainedAt == 0 {
		cred.ObtainedAt = s.now().UnixMilli()
	}
	enrichFromToken(&cred, s.logger)

	if err := s.Save(ctx, cred); err != nil {
		return nil, err
	}
	return &cred, nil
}

func (s *FileStore) read() (document, error) {
	var doc document
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return doc, fmt.Errorf("failed to read credentials: %w", err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return doc, nil
}

func (s *FileStore) write(doc document) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// enrichFromToken fills expiry and identity from a JWT access token.
// The signature is not verified; the token is only read for display and expiry.
func enrichFromToken(cred *domain.Credential, logger *zap.Logger) {
	if cred.ExpiryDate != 0 && cred.Email != "" {
		return
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(cred.AccessToken, claims); err != nil {
		// Opaque tokens are normal
		return
	}

	if cred.ExpiryDate == 0 {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			cred.ExpiryDate = exp.UnixMilli()
			logger.Debug("expiry read from access token", zap.Int64("expiry_date", cred.ExpiryDate))
		}
	}
	if cred.Email == "" {
		if email, ok := claims["email"].(string); ok {
			cred.Email = email
		}
	}
	if cred.Name == "" {
		if name, ok := claims["name"].(string); ok {
			cred.Name = name
		}
	}
}
