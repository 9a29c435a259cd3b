package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Tools.YtDlp != "yt-dlp" || cfg.Fetch.InfoTimeout != 30 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
output_dir = "` + filepath.Join(dir, "music") + `"

[tools]
ytdlp = "/usr/local/bin/yt-dlp"

[fetch]
info_timeout = 10
archive_enabled = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %s exists=%v", resolved, exists)
	}
	if cfg.Tools.YtDlp != "/usr/local/bin/yt-dlp" {
		t.Fatalf("override not applied: %q", cfg.Tools.YtDlp)
	}
	if cfg.Fetch.InfoTimeout != 10 || !cfg.Fetch.ArchiveEnabled {
		t.Fatalf("fetch overrides not applied: %+v", cfg.Fetch)
	}
	// Untouched sections keep defaults.
	if cfg.Fetch.DownloadTimeout != 300 {
		t.Fatalf("expected default download timeout, got %d", cfg.Fetch.DownloadTimeout)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatal(err)
	}
	cfg.Fetch.InfoTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero timeout")
	}

	cfg = Default()
	if err := cfg.normalize(); err != nil {
		t.Fatal(err)
	}
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandPath("~/music")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, home) {
		t.Fatalf("expected %q under %q", got, home)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatal(err)
	}
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("sample config should parse and validate: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to be found")
	}
	if cfg.Fetch.DownloadTimeout != defaultDownloadTimeout {
		t.Fatalf("sample drifted from defaults: %d", cfg.Fetch.DownloadTimeout)
	}
}
