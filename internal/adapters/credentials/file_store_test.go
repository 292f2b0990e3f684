package credentials

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tunedinout/esfiddle/internal/core/domain"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "credentials.yaml"), nil)
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestLatestEmptyCache(t *testing.T) {
	store := newTestStore(t)
	cred, err := store.Latest(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cred != nil {
		t.Errorf("expected nil credential, got %+v", cred)
	}
}

func TestLatestPicksMostRecentSnapshot(t *testing.T) {
	store := newTestStore(t)
	content := `snapshots:
  - access_token: old
    refresh_token: r1
    expiry_date: 1000
    obtained_at: 10
  - access_token: newest
    refresh_token: r3
    expiry_date: 3000
    obtained_at: 30
  - access_token: middle
    refresh_token: r2
    expiry_date: 2000
    obtained_at: 20
`
	if err := os.WriteFile(store.Path(), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cred, err := store.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if cred == nil || cred.AccessToken != "newest" {
		t.Errorf("expected newest snapshot, got %+v", cred)
	}
}

func TestLatestCorruptFile(t *testing.T) {
	store := newTestStore(t)
	if err := os.WriteFile(store.Path(), []byte("snapshots: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Latest(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveStampsObtainedAt(t *testing.T) {
	store := newTestStore(t)
	store.now = func() time.Time { return time.UnixMilli(5000) }

	if err := store.Save(context.Background(), domainCred("a", "r")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	cred, err := store.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if cred.ObtainedAt != 5000 {
		t.Errorf("expected ObtainedAt=5000, got %d", cred.ObtainedAt)
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
	}
}

func TestSaveRejectsIncompleteCredential(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(context.Background(), domainCred("only-access", "")); err == nil {
		t.Fatal("expected error")
	}
}

func TestSaveKeepsBoundedHistory(t *testing.T) {
	store := newTestStore(t)
	for i := 1; i <= MaxSnapshots+5; i++ {
		c := domainCred("a", "r")
		c.ObtainedAt = int64(i)
		if err := store.Save(context.Background(), c); err != nil {
			t.Fatal(err)
		}
	}

	doc, err := store.read()
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Snapshots) != MaxSnapshots {
		t.Errorf("expected %d snapshots, got %d", MaxSnapshots, len(doc.Snapshots))
	}
	latest, _ := store.Latest(context.Background())
	if latest.ObtainedAt != int64(MaxSnapshots+5) {
		t.Errorf("expected newest snapshot kept, got %d", latest.ObtainedAt)
	}
}

func TestImportReadsJWTClaims(t *testing.T) {
	store := newTestStore(t)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, jwt.MapClaims{
		"exp":   exp.Unix(),
		"email": "dev@example.com",
		"name":  "Dev",
	})

	payload := `{"accessToken":"` + token + `","refreshToken":"refresh"}`
	cred, err := store.Import(context.Background(), strings.NewReader(payload))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if cred.ExpiryDate != exp.UnixMilli() {
		t.Errorf("expected expiry %d, got %d", exp.UnixMilli(), cred.ExpiryDate)
	}
	if cred.Email != "dev@example.com" || cred.Name != "Dev" {
		t.Errorf("identity not read from token: %+v", cred)
	}

	latest, err := store.Latest(context.Background())
	if err != nil || latest == nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest.RefreshToken != "refresh" {
		t.Errorf("unexpected refresh token %q", latest.RefreshToken)
	}
}

func TestImportKeepsExplicitExpiry(t *testing.T) {
	store := newTestStore(t)
	token := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})

	payload := `{"accessToken":"` + token + `","refreshToken":"r","expiryDate":42}`
	cred, err := store.Import(context.Background(), strings.NewReader(payload))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if cred.ExpiryDate != 42 {
		t.Errorf("explicit expiry overwritten: %d", cred.ExpiryDate)
	}
}

func TestImportOpaqueToken(t *testing.T) {
	store := newTestStore(t)
	cred, err := store.Import(context.Background(), strings.NewReader(`{"accessToken":"ya29.opaque","refreshToken":"r"}`))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if cred.ExpiryDate != 0 {
		t.Errorf("expected unknown expiry, got %d", cred.ExpiryDate)
	}
}

func TestImportInvalidJSON(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Import(context.Background(), strings.NewReader("{")); err == nil {
		t.Fatal("expected error")
	}
}

func domainCred(access, refresh string) domain.Credential {
	return domain.Credential{AccessToken: access, RefreshToken: refresh}
}
