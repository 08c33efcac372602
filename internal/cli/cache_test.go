package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestCacheDir(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	c := New(&bytes.Buffer{}, log.InfoLevel)
	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	if want := filepath.Join(xdg, appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}

	c.config.Cache.Dir = "/var/cache/er"
	if dir, _ := c.cacheDir(); dir != "/var/cache/er" {
		t.Errorf("configured cacheDir() = %q", dir)
	}
}

func TestCacheClear(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	schemaPath := writeSchema(t)
	out := filepath.Join(t.TempDir(), "model")

	if _, _, err := execute(t, "render", schemaPath, "-f", "json", "-o", out); err != nil {
		t.Fatalf("render: %v", err)
	}
	stdout, _, err := execute(t, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if strings.Contains(stdout, "Cleared 0 ") || !strings.Contains(stdout, "Cleared ") {
		t.Errorf("expected cached entries to be cleared:\n%s", stdout)
	}

	stdout, _, err = execute(t, "cache", "clear")
	if err != nil {
		t.Fatalf("second cache clear: %v", err)
	}
	if !strings.Contains(stdout, "Cleared 0 ") {
		t.Errorf("second clear should find nothing:\n%s", stdout)
	}
}

func TestCachePath(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	stdout, _, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if got := strings.TrimSpace(stdout); got != filepath.Join(xdg, appName) {
		t.Errorf("cache path = %q", got)
	}
}

func TestKeyerNamespace(t *testing.T) {
	c := New(&bytes.Buffer{}, log.InfoLevel)
	plain := c.keyer().SchemaKey("file:catalog.json")

	c.config.Cache.Namespace = "staging"
	scoped := c.keyer().SchemaKey("file:catalog.json")
	if scoped != "staging:"+plain {
		t.Errorf("scoped key = %q, want prefix staging: on %q", scoped, plain)
	}
}
