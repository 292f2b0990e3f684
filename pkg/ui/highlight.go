package ui

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// DefaultHighlightStyle is used when no style is configured
const DefaultHighlightStyle = "monokai"

// lexerForKind maps a file kind to a chroma lexer name
func lexerForKind(kind string) string {
	switch kind {
	case "js":
		return "javascript"
	case "html":
		return "html"
	case "css":
		return "css"
	default:
		return "plaintext"
	}
}

// Highlight renders source with terminal colors. On any highlighter error the
// source is returned unchanged.
func Highlight(source, kind, style string) string {
	if style == "" {
		style = DefaultHighlightStyle
	}

	var b strings.Builder
	if err := quick.Highlight(&b, source, lexerForKind(kind), "terminal256", style); err != nil {
		return source
	}
	return b.String()
}
