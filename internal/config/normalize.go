package config

import "strings"

func (c *Config) normalize() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return err
	}

	c.Tools.YtDlp = strings.TrimSpace(c.Tools.YtDlp)
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	if len(c.Embed.CoverNames) == 0 {
		c.Embed.CoverNames = defaultCoverNames()
	}
	return nil
}
