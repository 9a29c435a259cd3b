package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"opuskit/internal/config"
	"opuskit/internal/faillog"
	"opuskit/internal/fileutil"
	"opuskit/internal/history"
	"opuskit/internal/logging"
	"opuskit/internal/services/ffmpeg"
	"opuskit/internal/services/ytdlp"
)

// Downloader is the yt-dlp surface the fetcher needs.
type Downloader interface {
	Info(ctx context.Context, url string) (ytdlp.TrackInfo, error)
	FlatPlaylist(ctx context.Context, url string) (ytdlp.PlaylistInfo, error)
	DirectURL(ctx context.Context, url string) (string, error)
	DownloadNative(ctx context.Context, url, destDir string) (string, error)
	DownloadExtract(ctx context.Context, url, tempBase string) (string, error)
}

// Tagger is the ffmpeg surface the fetcher needs.
type Tagger interface {
	StreamCopy(ctx context.Context, input, outPath string) error
	WriteTags(ctx context.Context, path string, tags []ffmpeg.Tag) error
}

// Status classifies the outcome of a single track download.
type Status int

const (
	StatusDownloaded Status = iota
	StatusSkippedExists
	StatusSkippedArchived
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDownloaded:
		return "downloaded"
	case StatusSkippedExists:
		return "exists"
	case StatusSkippedArchived:
		return "archived"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result describes one processed track.
type Result struct {
	URL    string
	Title  string
	Artist string
	Path   string
	Status Status
}

// Fetcher orchestrates metadata lookup, download strategies, tagging, and
// failure accounting.
type Fetcher struct {
	cfg     *config.Config
	dl      Downloader
	tagger  Tagger
	session *Session
	archive *history.Store
	logger  *slog.Logger
	out     io.Writer
}

// New constructs a fetcher. archive may be nil when the download archive is
// disabled; out receives user-facing progress lines and may be nil.
func New(cfg *config.Config, dl Downloader, tagger Tagger, session *Session, archive *history.Store, logger *slog.Logger, out io.Writer) *Fetcher {
	if out == nil {
		out = io.Discard
	}
	return &Fetcher{
		cfg:     cfg,
		dl:      dl,
		tagger:  tagger,
		session: session,
		archive: archive,
		logger:  logging.NewComponentLogger(logger, "fetch"),
		out:     out,
	}
}

// Session exposes the run's session for callers that report failures.
func (f *Fetcher) Session() *Session {
	return f.session
}

// CheckFreeSpace verifies the output filesystem has at least the configured
// minimum free space before a run starts.
func (f *Fetcher) CheckFreeSpace() error {
	minMiB := f.cfg.Fetch.MinFreeMiB
	if minMiB <= 0 {
		return nil
	}
	free, err := fileutil.FreeBytes(f.cfg.Paths.OutputDir)
	if err != nil {
		return fmt.Errorf("check free space: %w", err)
	}
	if free == 0 {
		return nil
	}
	freeMiB := free / (1024 * 1024)
	if freeMiB < uint64(minMiB) {
		return fmt.Errorf("only %d MiB free in %s, %d MiB required", freeMiB, f.cfg.Paths.OutputDir, minMiB)
	}
	return nil
}

// IsPlaylistURL reports whether a URL refers to a playlist or album rather
// than a single track.
func IsPlaylistURL(url string) bool {
	lower := strings.ToLower(url)
	for _, marker := range []string{"list=", "/playlist", "/album/", "/release"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// ProcessURL dispatches a URL to the playlist or single-track path.
func (f *Fetcher) ProcessURL(ctx context.Context, url string) error {
	if IsPlaylistURL(url) {
		_, err := f.ProcessPlaylist(ctx, url)
		return err
	}
	_, err := f.DownloadTrack(ctx, url)
	return err
}

// DownloadTrack fetches a single track into the configured output folder.
func (f *Fetcher) DownloadTrack(ctx context.Context, url string) (Result, error) {
	return f.downloadTo(ctx, url, f.cfg.Paths.OutputDir)
}

// downloadTo runs the full per-track pipeline against destDir. All failures
// are recorded in the session before being returned.
func (f *Fetcher) downloadTo(ctx context.Context, url, destDir string) (Result, error) {
	result := Result{URL: url, Status: StatusFailed}

	infoCtx, cancel := context.WithTimeout(ctx, f.cfg.InfoTimeout())
	info, err := f.dl.Info(infoCtx, url)
	cancel()
	if err != nil {
		err = fmt.Errorf("query metadata: %w", err)
		f.recordFailure(url, unknownTitle, unknownArtist, err)
		return result, err
	}

	meta := FromTrackInfo(info)
	result.Title = meta.Title
	result.Artist = meta.Artist
	dest := filepath.Join(destDir, meta.FileName())
	result.Path = dest

	if _, err := os.Stat(dest); err == nil {
		f.logger.Info("already downloaded",
			logging.String("title", meta.Title),
			logging.String("path", dest))
		fmt.Fprintf(f.out, "Skipping (exists): %s\n", meta.Title)
		result.Status = StatusSkippedExists
		return result, nil
	}

	if f.archive != nil {
		seen, err := f.archive.Seen(ctx, url)
		if err != nil {
			f.logger.Warn("archive lookup failed", logging.Error(err))
		} else if seen {
			f.logger.Info("already archived", logging.String("title", meta.Title))
			fmt.Fprintf(f.out, "Skipping (archived): %s\n", meta.Title)
			result.Status = StatusSkippedArchived
			return result, nil
		}
	}

	fmt.Fprintf(f.out, "Downloading: %s - %s\n", meta.Artist, meta.Title)
	if err := f.runStrategies(ctx, url, dest); err != nil {
		f.recordFailure(url, meta.Title, meta.Artist, err)
		return result, err
	}

	f.writeTags(ctx, dest, meta)
	f.recordSuccess(ctx, url, meta, dest)

	f.logger.Info("download complete",
		logging.String("title", meta.Title),
		logging.String("path", dest))
	fmt.Fprintf(f.out, "Done: %s (%.1f MiB)\n", filepath.Base(dest), fileutil.SizeMiB(dest))
	result.Status = StatusDownloaded
	return result, nil
}

// runStrategies tries each download strategy in order and returns the joined
// errors when all of them fail.
func (f *Fetcher) runStrategies(ctx context.Context, url, dest string) error {
	strategies := []struct {
		name string
		run  func(context.Context) error
	}{
		{"native", func(ctx context.Context) error { return f.downloadNative(ctx, url, dest) }},
		{"stream-copy", func(ctx context.Context) error { return f.downloadStreamCopy(ctx, url, dest) }},
		{"extract", func(ctx context.Context) error { return f.downloadExtract(ctx, url, dest) }},
	}

	var failures []error
	for _, strategy := range strategies {
		if err := ctx.Err(); err != nil {
			return err
		}
		runCtx, cancel := context.WithTimeout(ctx, f.cfg.DownloadTimeout())
		err := strategy.run(runCtx)
		cancel()
		if err == nil {
			f.logger.Info("strategy succeeded", logging.String("strategy", strategy.name))
			return nil
		}
		f.logger.Warn("strategy failed",
			logging.String("strategy", strategy.name),
			logging.Error(err))
		failures = append(failures, fmt.Errorf("%s: %w", strategy.name, err))
	}
	return fmt.Errorf("all strategies failed: %w", errors.Join(failures...))
}

// downloadNative lets yt-dlp fetch the native stream into a staging folder,
// then remuxes the result into dest.
func (f *Fetcher) downloadNative(ctx context.Context, url, dest string) error {
	staging, err := os.MkdirTemp(filepath.Dir(dest), ".opuskit-stage-")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	downloaded, err := f.dl.DownloadNative(ctx, url, staging)
	if err != nil {
		return err
	}
	return f.tagger.StreamCopy(ctx, downloaded, dest)
}

// downloadStreamCopy resolves the direct media URL and lets ffmpeg pull the
// stream straight into dest.
func (f *Fetcher) downloadStreamCopy(ctx context.Context, url, dest string) error {
	direct, err := f.dl.DirectURL(ctx, url)
	if err != nil {
		return err
	}
	return f.tagger.StreamCopy(ctx, direct, dest)
}

// downloadExtract uses yt-dlp's own Opus extraction into a temp sibling and
// moves the result into place.
func (f *Fetcher) downloadExtract(ctx context.Context, url, dest string) error {
	tempBase := fileutil.TempSibling(dest)
	produced, err := f.dl.DownloadExtract(ctx, url, tempBase)
	if err != nil {
		return err
	}
	return fileutil.ReplaceFile(produced, dest)
}

// writeTags applies metadata after a successful download. Tagging problems
// leave the audio on disk and are reported as warnings only.
func (f *Fetcher) writeTags(ctx context.Context, dest string, meta Metadata) {
	tagCtx, cancel := context.WithTimeout(ctx, f.cfg.TagTimeout())
	defer cancel()
	if err := f.tagger.WriteTags(tagCtx, dest, meta.Tags()); err != nil {
		f.logger.Warn("tagging failed, file kept untagged",
			logging.String("path", dest),
			logging.Error(err))
	}
}

func (f *Fetcher) recordSuccess(ctx context.Context, url string, meta Metadata, dest string) {
	if f.archive == nil {
		return
	}
	entry := history.Entry{
		URL:         url,
		Title:       meta.Title,
		Artist:      meta.Artist,
		OutputPath:  dest,
		CompletedAt: time.Now(),
	}
	if err := f.archive.Record(ctx, entry); err != nil {
		f.logger.Warn("archive write failed", logging.Error(err))
	}
}

func (f *Fetcher) recordFailure(url, title, artist string, cause error) {
	rec := faillog.Record{
		URL:    url,
		Title:  title,
		Artist: artist,
		Error:  cause.Error(),
		Time:   time.Now(),
	}
	if err := f.session.RecordFailure(rec); err != nil {
		f.logger.Error("failure log write failed", logging.Error(err))
	}
}

// RetrySummary accounts for a retry run.
type RetrySummary struct {
	Attempted int
	Succeeded int
	Failed    int
}

// Retry replays every URL in the failure log through the normal pipeline.
// Only the in-memory session is cleared first; the on-disk log keeps its
// history and grows by one block per download that fails again.
func (f *Fetcher) Retry(ctx context.Context) (RetrySummary, error) {
	urls, err := f.session.FailedURLs()
	if err != nil {
		return RetrySummary{}, fmt.Errorf("read failure log: %w", err)
	}
	if len(urls) == 0 {
		return RetrySummary{}, nil
	}
	f.session.Reset()

	summary := RetrySummary{Attempted: len(urls)}
	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := f.ProcessURL(ctx, url); err != nil {
			summary.Failed++
			continue
		}
		summary.Succeeded++
	}
	return summary, nil
}
