package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Tools names the external binaries opuskit drives.
type Tools struct {
	YtDlp  string `toml:"ytdlp"`
	FFmpeg string `toml:"ffmpeg"`
}

// Fetch contains timeouts and behavior for the track fetcher.
type Fetch struct {
	InfoTimeout     int  `toml:"info_timeout"`
	DownloadTimeout int  `toml:"download_timeout"`
	TagTimeout      int  `toml:"tag_timeout"`
	PlaylistTimeout int  `toml:"playlist_timeout"`
	TrackPause      int  `toml:"track_pause"`
	ArchiveEnabled  bool `toml:"archive_enabled"`
	MinFreeMiB      int  `toml:"min_free_mib"`
}

// Embed contains configuration for the cover embedder.
type Embed struct {
	// CoverNames are the conventional cover filenames tried when no
	// same-named image exists, in order.
	CoverNames []string `toml:"cover_names"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for opuskit.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Tools   Tools   `toml:"tools"`
	Fetch   Fetch   `toml:"fetch"`
	Embed   Embed   `toml:"embed"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/opuskit/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file was actually found.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("opuskit.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the output and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FailLogPath returns the location of the plain-text failed-downloads log.
func (c *Config) FailLogPath() string {
	return filepath.Join(c.Paths.OutputDir, "failed_downloads.txt")
}

// ArchivePath returns the location of the sqlite download archive.
func (c *Config) ArchivePath() string {
	return filepath.Join(c.Paths.LogDir, "downloads.db")
}

// LogFilePath returns the location of the structured log file.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "opuskit.log")
}

// LockPath returns the location of the fetch session lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "fetch.lock")
}

// InfoTimeout returns the metadata query timeout as a duration.
func (c *Config) InfoTimeout() time.Duration {
	return time.Duration(c.Fetch.InfoTimeout) * time.Second
}

// DownloadTimeout returns the per-strategy download timeout as a duration.
func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.Fetch.DownloadTimeout) * time.Second
}

// TagTimeout returns the tag-write timeout as a duration.
func (c *Config) TagTimeout() time.Duration {
	return time.Duration(c.Fetch.TagTimeout) * time.Second
}

// PlaylistTimeout returns the flat-playlist query timeout as a duration.
func (c *Config) PlaylistTimeout() time.Duration {
	return time.Duration(c.Fetch.PlaylistTimeout) * time.Second
}

// TrackPause returns the delay between playlist items.
func (c *Config) TrackPause() time.Duration {
	return time.Duration(c.Fetch.TrackPause) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
