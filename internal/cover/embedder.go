package cover

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"

	"opuskit/internal/logging"
	"opuskit/internal/media"
	"opuskit/internal/services/ffmpeg"
)

// ErrNoCover is returned when no artwork could be located for an audio file.
var ErrNoCover = errors.New("no cover image found")

// Summary accounts for a batch embedding run.
type Summary struct {
	Processed int
	Skipped   int
	Failed    int
}

// Total is the number of audio files considered.
func (s Summary) Total() int {
	return s.Processed + s.Skipped + s.Failed
}

// Embedder writes front-cover artwork into audio files.
type Embedder struct {
	ffmpeg       *ffmpeg.Client
	conventional []string
	logger       *slog.Logger
}

// NewEmbedder constructs an embedder. conventional is the ordered list of
// fallback cover filenames tried after an exact-stem match fails.
func NewEmbedder(ffmpegClient *ffmpeg.Client, conventional []string, logger *slog.Logger) *Embedder {
	return &Embedder{
		ffmpeg:       ffmpegClient,
		conventional: conventional,
		logger:       logging.NewComponentLogger(logger, "embed"),
	}
}

// Embed writes coverPath into audioPath as the front cover, replacing any
// existing picture.
func (e *Embedder) Embed(ctx context.Context, audioPath, coverPath string) error {
	pic, err := FromFile(coverPath)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(audioPath)) {
	case ".opus", ".ogg":
		return e.ffmpeg.AttachPicture(ctx, audioPath, pic.MetadataBlockBase64())
	case ".mp3":
		return embedMP3(audioPath, pic)
	default:
		return fmt.Errorf("unsupported audio format: %s", filepath.Base(audioPath))
	}
}

// ProcessFile embeds artwork into a single audio file. When the usual lookup
// finds nothing and fallbackCover is non-empty, the fallback is used instead.
func (e *Embedder) ProcessFile(ctx context.Context, audioPath, fallbackCover string) error {
	coverPath, err := Find(audioPath, e.conventional)
	if err != nil {
		return err
	}
	if coverPath == "" {
		if fallbackCover == "" {
			return fmt.Errorf("%w for %s", ErrNoCover, filepath.Base(audioPath))
		}
		coverPath = fallbackCover
	}
	e.logger.Info("embedding cover",
		logging.String("audio", filepath.Base(audioPath)),
		logging.String("cover", filepath.Base(coverPath)))
	return e.Embed(ctx, audioPath, coverPath)
}

// ProcessFolder embeds artwork into every audio file in dir. Files without a
// locatable cover are skipped; individual failures are logged and counted
// without aborting the batch.
func (e *Embedder) ProcessFolder(ctx context.Context, dir string) (Summary, error) {
	audio, _, err := media.Scan(dir)
	if err != nil {
		return Summary{}, fmt.Errorf("scan folder: %w", err)
	}

	var summary Summary
	for _, name := range audio {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		audioPath := filepath.Join(dir, name)
		coverPath, err := Find(audioPath, e.conventional)
		if err != nil {
			return summary, err
		}
		if coverPath == "" {
			e.logger.Warn("no cover found", logging.String("audio", name))
			summary.Skipped++
			continue
		}
		if err := e.Embed(ctx, audioPath, coverPath); err != nil {
			e.logger.Error("embed failed", logging.String("audio", name), logging.Error(err))
			summary.Failed++
			continue
		}
		e.logger.Info("embedded cover",
			logging.String("audio", name),
			logging.String("cover", filepath.Base(coverPath)))
		summary.Processed++
	}
	return summary, nil
}

func embedMP3(path string, pic Picture) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open id3 tag: %w", err)
	}
	defer tag.Close()

	tag.DeleteFrames(tag.CommonID("Attached picture"))
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    pic.MIME,
		PictureType: id3v2.PTFrontCover,
		Picture:     pic.Data,
	})
	if err := tag.Save(); err != nil {
		return fmt.Errorf("save id3 tag: %w", err)
	}
	return nil
}
