package config

import (
	"errors"
	"fmt"
	"sort"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if c.Tools.YtDlp == "" {
		return errors.New("tools.ytdlp must be set")
	}
	if c.Tools.FFmpeg == "" {
		return errors.New("tools.ffmpeg must be set")
	}
	if err := ensurePositive(map[string]int{
		"fetch.info_timeout":     c.Fetch.InfoTimeout,
		"fetch.download_timeout": c.Fetch.DownloadTimeout,
		"fetch.tag_timeout":      c.Fetch.TagTimeout,
		"fetch.playlist_timeout": c.Fetch.PlaylistTimeout,
	}); err != nil {
		return err
	}
	if c.Fetch.TrackPause < 0 {
		return errors.New("fetch.track_pause must not be negative")
	}
	if c.Fetch.MinFreeMiB < 0 {
		return errors.New("fetch.min_free_mib must not be negative")
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func ensurePositive(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
