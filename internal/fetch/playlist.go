package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"opuskit/internal/logging"
	"opuskit/internal/services/ytdlp"
	"opuskit/internal/textutil"
)

// PlaylistSummary accounts for a playlist run.
type PlaylistSummary struct {
	Title      string
	Folder     string
	Total      int
	Downloaded int
	Skipped    int
	Failed     int
}

// ProcessPlaylist downloads every entry of a playlist into a subfolder named
// after the playlist. Entries are fetched sequentially with a pause between
// them; per-track failures are recorded and the run continues.
func (f *Fetcher) ProcessPlaylist(ctx context.Context, url string) (PlaylistSummary, error) {
	listCtx, cancel := context.WithTimeout(ctx, f.cfg.PlaylistTimeout())
	info, err := f.dl.FlatPlaylist(listCtx, url)
	cancel()
	if err != nil {
		return PlaylistSummary{}, fmt.Errorf("query playlist: %w", err)
	}
	if len(info.Entries) == 0 {
		return PlaylistSummary{Title: info.Title}, fmt.Errorf("playlist %q has no entries", info.Title)
	}

	folder := filepath.Join(f.cfg.Paths.OutputDir, textutil.SafeFolderName(info.Title))
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return PlaylistSummary{}, fmt.Errorf("create playlist folder: %w", err)
	}

	summary := PlaylistSummary{Title: info.Title, Folder: folder, Total: len(info.Entries)}
	f.logger.Info("playlist start",
		logging.String("title", info.Title),
		logging.Int("entries", len(info.Entries)))
	fmt.Fprintf(f.out, "Playlist: %s (%d tracks)\n", info.Title, len(info.Entries))

	for i, entry := range info.Entries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		fmt.Fprintf(f.out, "[%d/%d] ", i+1, summary.Total)

		result, err := f.downloadTo(ctx, ytdlp.WatchURL(entry.ID), folder)
		switch {
		case err != nil:
			summary.Failed++
		case result.Status == StatusDownloaded:
			summary.Downloaded++
		default:
			summary.Skipped++
		}

		if i < len(info.Entries)-1 {
			pause(ctx, f.cfg.TrackPause())
		}
	}

	f.logger.Info("playlist done",
		logging.String("title", info.Title),
		logging.Int("downloaded", summary.Downloaded),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed))
	return summary, nil
}

func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
