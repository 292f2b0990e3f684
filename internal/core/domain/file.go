package domain

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// MaxNameLength is the longest file name accepted by ValidateName
const MaxNameLength = 255

// FileRecord is the persisted unit of the playground
type FileRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Data      string `json:"data"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds of the last write
}

// Kind is the playground language a file belongs to
type Kind string

const (
	KindJavaScript Kind = "js"
	KindHTML       Kind = "html"
	KindCSS        Kind = "css"
	KindText       Kind = "text"
)

// KindFromName derives the file kind from its extension
// "main.js" -> js, "index.htm" -> html, "notes" -> text
func KindFromName(name string) Kind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".js", ".mjs", ".cjs", ".jsx":
		return KindJavaScript
	case ".html", ".htm":
		return KindHTML
	case ".css":
		return KindCSS
	default:
		return KindText
	}
}

// MediaType returns the media type used when encoding content of this kind
func (k Kind) MediaType() string {
	switch k {
	case KindJavaScript:
		return "text/javascript"
	case KindHTML:
		return "text/html"
	case KindCSS:
		return "text/css"
	default:
		return "text/plain"
	}
}

// Kind returns the kind of the record based on its name
func (f *FileRecord) Kind() Kind {
	return KindFromName(f.Name)
}

// LastWritten converts the record timestamp to a time.Time
func (f *FileRecord) LastWritten() time.Time {
	if f.Timestamp == 0 {
		return time.Time{}
	}
	return time.UnixMilli(f.Timestamp)
}

// GetDisplayDate returns a human-readable last-written date
func (f *FileRecord) GetDisplayDate(layout string) string {
	if f.Timestamp == 0 {
		return "-"
	}
	if layout == "" {
		layout = "2006-01-02 15:04"
	}
	return f.LastWritten().Format(layout)
}

// ShortID returns the first block of the id, enough to pick a file on the command line
func (f *FileRecord) ShortID() string {
	if i := strings.IndexByte(f.ID, '-'); i > 0 {
		return f.ID[:i]
	}
	return f.ID
}

// ValidateName checks if a file name is valid
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name too long (max %d characters)", ErrInvalidName, MaxNameLength)
	}

	return nil
}

// SafeFilename turns a record name into something that can be written to disk
// "My App/main.js" -> "my-app-main.js"
func SafeFilename(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	base := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))

	reg := regexp.MustCompile(`[^a-z0-9._]+`)
	base = reg.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-.")

	if base == "" {
		base = "untitled"
	}
	return base + ext
}

// NowMillis returns t as epoch milliseconds
func NowMillis(t time.Time) int64 {
	return t.UnixMilli()
}
