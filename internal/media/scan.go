package media

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var audioExtensions = map[string]struct{}{
	".opus": {},
	".ogg":  {},
	".mp3":  {},
}

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".bmp":  {},
	".gif":  {},
	".webp": {},
	".tiff": {},
}

// CoverExtensions lists the embeddable cover formats in lookup order.
var CoverExtensions = []string{".jpg", ".jpeg", ".png"}

// IsAudio reports whether the filename has a supported audio extension.
func IsAudio(name string) bool {
	_, ok := audioExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// IsImage reports whether the filename has a supported image extension.
func IsImage(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Stem returns the filename without its extension.
func Stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Scan lists a directory and partitions regular files into audio and image
// names. Both slices are sorted for stable output.
func Scan(dir string) (audio, images []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch {
		case IsAudio(name):
			audio = append(audio, name)
		case IsImage(name):
			images = append(images, name)
		}
	}
	sort.Strings(audio)
	sort.Strings(images)
	return audio, images, nil
}
