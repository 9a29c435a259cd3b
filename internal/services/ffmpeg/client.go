package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"opuskit/internal/fileutil"
)

// Tag is one metadata key/value pair. Order is preserved on the command
// line so tag writes are deterministic.
type Tag struct {
	Key   string
	Value string
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onLine func(string)) error
}

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

// Client wraps ffmpeg CLI interactions.
type Client struct {
	binary string
	exec   Executor
}

// New constructs an ffmpeg client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	client := &Client{binary: binary, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// StreamCopy downloads input (a file or a direct media URL) into outPath by
// copying the audio stream without re-encoding.
func (c *Client) StreamCopy(ctx context.Context, input, outPath string) error {
	args := []string{"-i", input, "-c", "copy", "-vn", "-y", outPath}
	if err := c.run(ctx, args); err != nil {
		return fmt.Errorf("ffmpeg stream copy: %w", err)
	}
	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("ffmpeg stream copy: output missing: %w", err)
	}
	return nil
}

// WriteTags rewrites path with the given metadata tags set, copying streams
// into a temp sibling and atomically replacing the original.
func (c *Client) WriteTags(ctx context.Context, path string, tags []Tag) error {
	if len(tags) == 0 {
		return nil
	}
	args := []string{"-i", path, "-c", "copy", "-map_metadata", "0"}
	for _, tag := range tags {
		args = append(args, "-metadata", fmt.Sprintf("%s=%s", tag.Key, tag.Value))
	}
	if err := c.rewrite(ctx, path, args); err != nil {
		return fmt.Errorf("ffmpeg tag write: %w", err)
	}
	return nil
}

// AttachPicture rewrites an ogg/opus file with the given base64-encoded
// FLAC picture block as its metadata_block_picture comment, replacing any
// existing picture.
func (c *Client) AttachPicture(ctx context.Context, path, pictureBase64 string) error {
	args := []string{
		"-i", path,
		"-c", "copy",
		"-map_metadata", "0",
		"-metadata", "metadata_block_picture=" + pictureBase64,
	}
	if err := c.rewrite(ctx, path, args); err != nil {
		return fmt.Errorf("ffmpeg attach picture: %w", err)
	}
	return nil
}

// rewrite runs ffmpeg with args writing to a temp sibling of path, then
// replaces path on success. The temp file is removed on failure.
func (c *Client) rewrite(ctx context.Context, path string, args []string) error {
	tmp := fileutil.TempSibling(path) + strings.ToLower(extOf(path))
	args = append(args, "-y", tmp)
	if err := c.run(ctx, args); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			return fmt.Errorf("%w (cleanup temp: %v)", err, removeErr)
		}
		return err
	}
	if _, err := os.Stat(tmp); err != nil {
		return fmt.Errorf("temp output missing: %w", err)
	}
	return fileutil.ReplaceFile(tmp, path)
}

func (c *Client) run(ctx context.Context, args []string) error {
	var tail tailBuffer
	if err := c.exec.Run(ctx, c.binary, args, tail.add); err != nil {
		if tail.Len() > 0 {
			return fmt.Errorf("%w: %s", err, tail.String())
		}
		return err
	}
	return nil
}

// extOf preserves the container extension on temp files so ffmpeg can infer
// the output muxer.
func extOf(path string) string {
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		return path[idx:]
	}
	return ""
}

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

func (t *tailBuffer) Len() int { return len(t.lines) }

func (t *tailBuffer) String() string { return strings.Join(t.lines, "; ") }

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if onLine != nil {
				onLine(scanner.Text())
			}
		}
	}
	wg.Add(2)
	go scan(stdout)
	go scan(stderr)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("command timed out: %w", ctx.Err())
		}
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
