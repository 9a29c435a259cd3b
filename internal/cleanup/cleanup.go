// Package cleanup removes leftover artwork files from music folders once
// their tracks have embedded covers.
package cleanup

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"opuskit/internal/logging"
	"opuskit/internal/media"
)

// Mode selects which images a cleanup run targets.
type Mode int

const (
	// ModeAll deletes every image in the folder.
	ModeAll Mode = iota
	// ModeMatched deletes only images whose name matches an audio file.
	ModeMatched
)

// Pair associates an image with the audio file it matched.
type Pair struct {
	Image string
	Audio string
}

// Plan is the result of scanning a folder: what is there and which images
// would be deleted under the matched-only mode.
type Plan struct {
	Dir     string
	Audio   []string
	Images  []string
	Matched []Pair
}

// Targets returns the image names a run in the given mode would delete.
func (p Plan) Targets(mode Mode) []string {
	if mode == ModeAll {
		return p.Images
	}
	names := make([]string, 0, len(p.Matched))
	for _, pair := range p.Matched {
		names = append(names, pair.Image)
	}
	return names
}

// Summary accounts for a deletion run.
type Summary struct {
	Deleted int
	Errors  int
}

// Cleaner scans folders and deletes leftover images.
type Cleaner struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Cleaner {
	return &Cleaner{logger: logging.NewComponentLogger(logger, "cleanup")}
}

// Scan partitions dir into audio and image files and pairs each image with
// the first audio file whose stem overlaps it.
func (c *Cleaner) Scan(dir string) (Plan, error) {
	audio, images, err := media.Scan(dir)
	if err != nil {
		return Plan{}, fmt.Errorf("scan folder: %w", err)
	}
	plan := Plan{Dir: dir, Audio: audio, Images: images}
	for _, image := range images {
		if match, ok := media.FirstMatch(image, audio); ok {
			plan.Matched = append(plan.Matched, Pair{Image: image, Audio: match})
		}
	}
	return plan, nil
}

// Delete removes the plan's target images for the given mode. Individual
// failures are logged and counted; the run continues past them.
func (c *Cleaner) Delete(plan Plan, mode Mode) Summary {
	var summary Summary
	for _, name := range plan.Targets(mode) {
		path := filepath.Join(plan.Dir, name)
		if err := os.Remove(path); err != nil {
			c.logger.Error("delete failed", logging.String("file", name), logging.Error(err))
			summary.Errors++
			continue
		}
		c.logger.Info("deleted image", logging.String("file", name))
		summary.Deleted++
	}
	return summary
}
