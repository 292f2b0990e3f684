package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestKindFromName(t *testing.T) {
	tests := []struct {
		name     string
		expected Kind
	}{
		{"main.js", KindJavaScript},
		{"App.JSX", KindJavaScript},
		{"index.html", KindHTML},
		{"page.htm", KindHTML},
		{"style.css", KindCSS},
		{"README", KindText},
		{"notes.md", KindText},
	}

	for _, tt := range tests {
		got := KindFromName(tt.name)
		if got != tt.expected {
			t.Errorf("KindFromName(%q) = %q, want %q", tt.name, got, tt.expected)
		}
	}
}

func TestKind_MediaType(t *testing.T) {
	if got := KindJavaScript.MediaType(); got != "text/javascript" {
		t.Errorf("expected text/javascript, got %q", got)
	}
	if got := KindText.MediaType(); got != "text/plain" {
		t.Errorf("expected text/plain, got %q", got)
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		isValid bool
	}{
		{"main.js", true},
		{"my playground", true},
		{"", false},
		{"   ", false},
		{strings.Repeat("a", MaxNameLength), true},
		{strings.Repeat("a", MaxNameLength+1), false},
	}

	for _, tt := range tests {
		err := ValidateName(tt.name)
		if tt.isValid && err != nil {
			t.Errorf("ValidateName(%q) returned unexpected error: %v", tt.name, err)
		}
		if !tt.isValid {
			if err == nil {
				t.Errorf("ValidateName(%q) expected error, got nil", tt.name)
			} else if !errors.Is(err, ErrInvalidName) {
				t.Errorf("ValidateName(%q) error should wrap ErrInvalidName, got %v", tt.name, err)
			}
		}
	}
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"main.js", "main.js"},
		{"My App/Main.JS", "my-app-main.js"},
		{"???.css", "untitled.css"},
		{"hello world", "hello-world"},
	}

	for _, tt := range tests {
		got := SafeFilename(tt.name)
		if got != tt.expected {
			t.Errorf("SafeFilename(%q) = %q, want %q", tt.name, got, tt.expected)
		}
	}
}

func TestFileRecord_ShortID(t *testing.T) {
	f := FileRecord{ID: "3f2b9c1e-1111-4222-8333-444455556666"}
	if got := f.ShortID(); got != "3f2b9c1e" {
		t.Errorf("ShortID() = %q, want %q", got, "3f2b9c1e")
	}

	f = FileRecord{ID: "plain"}
	if got := f.ShortID(); got != "plain" {
		t.Errorf("ShortID() = %q, want %q", got, "plain")
	}
}

func TestFileRecord_GetDisplayDate(t *testing.T) {
	f := FileRecord{}
	if got := f.GetDisplayDate(""); got != "-" {
		t.Errorf("expected '-' for missing timestamp, got %q", got)
	}

	ts := time.Date(2024, 3, 5, 10, 30, 0, 0, time.Local)
	f.Timestamp = ts.UnixMilli()
	if got := f.GetDisplayDate("2006-01-02"); got != "2024-03-05" {
		t.Errorf("GetDisplayDate() = %q, want %q", got, "2024-03-05")
	}
}

func TestIOError(t *testing.T) {
	base := errors.New("disk full")
	err := NewIOError("put", base)

	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected *IOError, got %T", err)
	}
	if ioErr.Op != "put" {
		t.Errorf("expected op 'put', got %q", ioErr.Op)
	}
	if !errors.Is(err, base) {
		t.Error("IOError should unwrap to the underlying error")
	}
	if NewIOError("get", nil) != nil {
		t.Error("NewIOError with nil error should return nil")
	}
}

func TestCredential_HasTokens(t *testing.T) {
	tests := []struct {
		name     string
		cred     *Credential
		expected bool
	}{
		{"nil credential", nil, false},
		{"both tokens", &Credential{AccessToken: "a", RefreshToken: "r"}, true},
		{"missing refresh", &Credential{AccessToken: "a"}, false},
		{"blank access", &Credential{AccessToken: "  ", RefreshToken: "r"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cred.HasTokens(); got != tt.expected {
				t.Errorf("HasTokens() = %v, want %v", got, tt.expected)
			}
		})
	}
}
