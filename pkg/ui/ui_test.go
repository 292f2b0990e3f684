package ui

import (
	"strings"
	"testing"
)

func TestTableRender(t *testing.T) {
	table := NewTable([]TableColumn{
		{Header: "ID"},
		{Header: "NAME", MaxWidth: 8},
		{Header: "SIZE", Align: "right"},
	})
	table.AddRow([]string{"abc", "main.js", "12"})
	table.AddRow([]string{"def", "a-very-long-name.js", "3"})

	out := table.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "main.js") {
		t.Errorf("missing row content:\n%s", out)
	}
	if strings.Contains(out, "a-very-long-name.js") {
		t.Errorf("long cell was not truncated:\n%s", out)
	}
	if !strings.Contains(out, "…") {
		t.Errorf("expected ellipsis:\n%s", out)
	}
}

func TestTableRenderNoColumns(t *testing.T) {
	if out := NewTable(nil).Render(); out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}

func TestPadString(t *testing.T) {
	tests := []struct {
		s, align string
		width    int
		want     string
	}{
		{"ab", "left", 4, "ab  "},
		{"ab", "right", 4, "  ab"},
		{"ab", "center", 5, " ab  "},
		{"abcdef", "left", 3, "abcdef"},
	}
	for _, tt := range tests {
		if got := padString(tt.s, tt.width, tt.align); got != tt.want {
			t.Errorf("padString(%q, %d, %q) = %q, want %q", tt.s, tt.width, tt.align, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate changed a short string: %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("truncate = %q, want abcd…", got)
	}
}

func TestHighlightKeepsSource(t *testing.T) {
	src := "const answer = 42;"
	out := Highlight(src, "js", "")
	if !strings.Contains(out, "answer") {
		t.Errorf("highlighted output lost content: %q", out)
	}
	if got := Highlight("plain words", "text", "no-such-style"); !strings.Contains(got, "plain words") {
		t.Errorf("unexpected output %q", got)
	}
}

func TestFormatMode(t *testing.T) {
	tests := []struct {
		mode string
		icon string
	}{
		{"online", IconOnline},
		{"expired", IconOnline},
		{"offline", IconOffline},
	}
	for _, tt := range tests {
		got := FormatMode(tt.mode)
		if !strings.Contains(got, tt.mode) || !strings.Contains(got, tt.icon) {
			t.Errorf("FormatMode(%q) = %q, want mode and %s", tt.mode, got, tt.icon)
		}
	}
}

func TestSetThemeRebuildsStyles(t *testing.T) {
	for _, theme := range []string{"light", "dark", "auto"} {
		SetTheme(theme)
		if !strings.Contains(FormatSaved("main.js"), "main.js") {
			t.Errorf("theme %s: saved notice lost its text", theme)
		}
	}
}

func TestRenderSimpleList(t *testing.T) {
	out := RenderSimpleList([]string{"one", "two"})
	if strings.Count(out, "\n") != 2 || !strings.Contains(out, "two") {
		t.Errorf("unexpected list %q", out)
	}
}
