package config

const (
	defaultOutputDir       = "~/Music/opuskit"
	defaultLogDir          = "~/.local/share/opuskit/logs"
	defaultYtDlpBinary     = "yt-dlp"
	defaultFFmpegBinary    = "ffmpeg"
	defaultInfoTimeout     = 30
	defaultDownloadTimeout = 300
	defaultTagTimeout      = 60
	defaultPlaylistTimeout = 60
	defaultTrackPause      = 1
	defaultMinFreeMiB      = 512
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

func defaultCoverNames() []string {
	return []string{"cover.jpg", "cover.jpeg", "cover.png", "album.jpg", "folder.jpg"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Tools: Tools{
			YtDlp:  defaultYtDlpBinary,
			FFmpeg: defaultFFmpegBinary,
		},
		Fetch: Fetch{
			InfoTimeout:     defaultInfoTimeout,
			DownloadTimeout: defaultDownloadTimeout,
			TagTimeout:      defaultTagTimeout,
			PlaylistTimeout: defaultPlaylistTimeout,
			TrackPause:      defaultTrackPause,
			MinFreeMiB:      defaultMinFreeMiB,
		},
		Embed: Embed{
			CoverNames: defaultCoverNames(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
