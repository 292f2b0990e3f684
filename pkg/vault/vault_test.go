package vault

import (
	"os"
	"path/filepath"
	"testing"
)

func TestVault_GetWorkspacePath(t *testing.T) {
	v := &Vault{
		WorkspacePath: "/test/vault/workspace",
	}

	tests := []struct {
		name     string
		filename string
		expected string
	}{
		{"script", "main.js", "/test/vault/workspace/main.js"},
		{"markup", "index.html", "/test/vault/workspace/index.html"},
		{"nested", "demo/style.css", "/test/vault/workspace/demo/style.css"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.GetWorkspacePath(tt.filename)
			if result != filepath.FromSlash(tt.expected) {
				t.Errorf("GetWorkspacePath(%q) = %q, want %q", tt.filename, result, tt.expected)
			}
		})
	}
}

func TestVault_GetCachePath(t *testing.T) {
	v := &Vault{
		CachePath: "/test/vault/cache",
	}

	if got := v.GetCachePath("export.zip"); got != filepath.FromSlash("/test/vault/cache/export.zip") {
		t.Errorf("GetCachePath = %q", got)
	}
}

func TestNewAt(t *testing.T) {
	v := NewAt("/data/esfiddle", "/config/esfiddle/config.yaml")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"workspace", v.WorkspacePath, "/data/esfiddle/workspace"},
		{"cache", v.CachePath, "/data/esfiddle/cache"},
		{"logs", v.LogsPath, "/data/esfiddle/logs"},
		{"database", v.DatabasePath, "/data/esfiddle/esfiddle.db"},
		{"credentials", v.CredentialsPath, "/data/esfiddle/credentials.yaml"},
		{"log file", v.LogFilePath(), "/data/esfiddle/logs/esfiddle.log"},
		{"config", v.ConfigPath, "/config/esfiddle/config.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != filepath.FromSlash(tt.want) {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestNew_UsesXDG(t *testing.T) {
	dataHome := t.TempDir()
	configHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)
	t.Setenv("XDG_CONFIG_HOME", configHome)

	v, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if v.RootPath != filepath.Join(dataHome, "esfiddle") {
		t.Errorf("unexpected root %q", v.RootPath)
	}
	if v.ConfigPath != filepath.Join(configHome, "esfiddle", "config.yaml") {
		t.Errorf("unexpected config path %q", v.ConfigPath)
	}
}

func TestVault_InitializeAndExists(t *testing.T) {
	root := filepath.Join(t.TempDir(), "esfiddle")
	v := NewAt(root, filepath.Join(root, "config.yaml"))

	if v.Exists() {
		t.Fatal("vault should not exist before Initialize")
	}

	if err := v.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	for _, dir := range []string{v.RootPath, v.WorkspacePath, v.CachePath, v.LogsPath} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("directory %s not created", dir)
		}
	}
	if !v.Exists() {
		t.Error("vault should exist after Initialize")
	}

	// Idempotent
	if err := v.Initialize(); err != nil {
		t.Errorf("second Initialize failed: %v", err)
	}
}

func TestVault_CleanCache(t *testing.T) {
	root := t.TempDir()
	v := NewAt(root, filepath.Join(root, "config.yaml"))
	if err := v.Initialize(); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(v.GetCachePath("a.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(v.GetCachePath("sub"), 0755); err != nil {
		t.Fatal(err)
	}

	if err := v.CleanCache(); err != nil {
		t.Fatalf("CleanCache failed: %v", err)
	}

	entries, err := os.ReadDir(v.CachePath)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty cache, found %d entries", len(entries))
	}
}
