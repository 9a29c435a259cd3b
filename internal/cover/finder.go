package cover

import (
	"os"
	"path/filepath"

	"opuskit/internal/media"
)

// Find locates the artwork for an audio file. Lookup order: an image whose
// stem matches the audio filename exactly, then the conventional cover names
// (cover.jpg and friends), then any supported image in the folder. Returns
// "" when the folder holds no candidate.
func Find(audioPath string, conventional []string) (string, error) {
	dir := filepath.Dir(audioPath)
	stem := media.Stem(filepath.Base(audioPath))

	for _, ext := range media.CoverExtensions {
		candidate := filepath.Join(dir, stem+ext)
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	for _, name := range conventional {
		candidate := filepath.Join(dir, name)
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	_, images, err := media.Scan(dir)
	if err != nil {
		return "", err
	}
	if len(images) > 0 {
		return filepath.Join(dir, images[0]), nil
	}
	return "", nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
