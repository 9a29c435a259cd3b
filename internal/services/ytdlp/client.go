package ytdlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Format selectors for YouTube Music audio. The native selector prefers the
// original Opus stream and falls back to the best available audio; the
// strict selector never falls back and is used for direct URL resolution.
const (
	nativeFormat = "bestaudio[ext=webm][acodec=opus]/bestaudio"
	strictFormat = "bestaudio[ext=webm][acodec=opus]"
)

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary string
	exec   Executor
}

// New constructs a yt-dlp client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{binary: binary, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Info queries full metadata for a single track.
func (c *Client) Info(ctx context.Context, url string) (TrackInfo, error) {
	stdout, stderrTail, err := c.capture(ctx, []string{"--dump-json", "--no-playlist", url})
	if err != nil {
		return TrackInfo{}, fmt.Errorf("yt-dlp info: %w%s", err, stderrSuffix(stderrTail))
	}
	payload := strings.TrimSpace(stdout)
	if payload == "" {
		return TrackInfo{}, errors.New("yt-dlp info: empty output")
	}
	var info TrackInfo
	if err := json.Unmarshal([]byte(payload), &info); err != nil {
		return TrackInfo{}, fmt.Errorf("yt-dlp info parse: %w", err)
	}
	return info, nil
}

// FlatPlaylist queries a lightweight playlist listing without resolving each
// entry's full metadata.
func (c *Client) FlatPlaylist(ctx context.Context, url string) (PlaylistInfo, error) {
	stdout, stderrTail, err := c.capture(ctx, []string{"--flat-playlist", "--dump-single-json", url})
	if err != nil {
		return PlaylistInfo{}, fmt.Errorf("yt-dlp playlist: %w%s", err, stderrSuffix(stderrTail))
	}
	payload := strings.TrimSpace(stdout)
	if payload == "" {
		return PlaylistInfo{}, errors.New("yt-dlp playlist: empty output")
	}
	var info PlaylistInfo
	if err := json.Unmarshal([]byte(payload), &info); err != nil {
		return PlaylistInfo{}, fmt.Errorf("yt-dlp playlist parse: %w", err)
	}
	return info, nil
}

// DirectURL resolves the direct media URL of the native Opus stream.
func (c *Client) DirectURL(ctx context.Context, url string) (string, error) {
	stdout, stderrTail, err := c.capture(ctx, []string{"-f", strictFormat, "--get-url", "--no-playlist", url})
	if err != nil {
		return "", fmt.Errorf("yt-dlp get-url: %w%s", err, stderrSuffix(stderrTail))
	}
	direct := firstLine(stdout)
	if direct == "" {
		return "", errors.New("yt-dlp get-url: empty direct url")
	}
	return direct, nil
}

// DownloadNative lets yt-dlp download the native audio stream into destDir
// with its own title-derived filename and returns the path it produced.
func (c *Client) DownloadNative(ctx context.Context, url, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create destination: %w", err)
	}
	args := []string{
		"-f", nativeFormat,
		"--no-playlist",
		"--no-embed-thumbnail",
		"--restrict-filenames",
		"-o", filepath.Join(destDir, "%(title)s.%(ext)s"),
		url,
	}
	var tail tailBuffer
	err := c.exec.Run(ctx, c.binary, args, tail.add, tail.add)
	if err != nil {
		return "", fmt.Errorf("yt-dlp download: %w%s", err, stderrSuffix(tail.String()))
	}
	path, err := newestAudioFile(destDir)
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", errors.New("yt-dlp download: no output file found")
	}
	return path, nil
}

// DownloadExtract downloads and transcodes to Opus under the tempBase output
// template, returning the resulting file path.
func (c *Client) DownloadExtract(ctx context.Context, url, tempBase string) (string, error) {
	args := []string{
		"-f", nativeFormat,
		"-x",
		"--audio-format", "opus",
		"--audio-quality", "0",
		"--no-playlist",
		"--no-overwrites",
		"--no-embed-thumbnail",
		"--no-embed-metadata",
		"--restrict-filenames",
		"--output", tempBase + ".%(ext)s",
		url,
	}
	var tail tailBuffer
	if err := c.exec.Run(ctx, c.binary, args, tail.add, tail.add); err != nil {
		return "", fmt.Errorf("yt-dlp extract: %w%s", err, stderrSuffix(tail.String()))
	}
	for _, ext := range []string{".opus", ".webm"} {
		candidate := tempBase + ext
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", errors.New("yt-dlp extract: no output file found after conversion")
}

func (c *Client) capture(ctx context.Context, args []string) (string, string, error) {
	var stdout strings.Builder
	var tail tailBuffer
	err := c.exec.Run(ctx, c.binary, args, func(line string) {
		stdout.WriteString(line)
		stdout.WriteByte('\n')
	}, tail.add)
	return stdout.String(), tail.String(), err
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func stderrSuffix(tail string) string {
	if tail == "" {
		return ""
	}
	return ": " + tail
}

// tailBuffer keeps the last few lines of command output for error context.
type tailBuffer struct {
	lines []string
}

const tailKeep = 5

func (t *tailBuffer) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	t.lines = append(t.lines, line)
	if len(t.lines) > tailKeep {
		t.lines = t.lines[len(t.lines)-tailKeep:]
	}
}

func (t *tailBuffer) String() string {
	return strings.Join(t.lines, "; ")
}

type audioEntry struct {
	path    string
	modTime time.Time
}

// newestAudioFile returns the most recently modified .webm or .opus file in
// dir, or empty when none exist.
func newestAudioFile(dir string) (string, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	var newest audioEntry
	for _, item := range items {
		if item.IsDir() {
			continue
		}
		name := strings.ToLower(item.Name())
		if !strings.HasSuffix(name, ".webm") && !strings.HasSuffix(name, ".opus") {
			continue
		}
		info, err := item.Info()
		if err != nil {
			continue
		}
		if newest.path == "" || info.ModTime().After(newest.modTime) {
			newest = audioEntry{path: filepath.Join(dir, item.Name()), modTime: info.ModTime()}
		}
	}
	return newest.path, nil
}
