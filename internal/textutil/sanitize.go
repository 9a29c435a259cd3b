package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxTrackNameLen  = 100
	maxFolderNameLen = 150
)

// unsafeReplacer maps characters that are invalid in filenames on at least
// one supported filesystem to underscores.
var unsafeReplacer = strings.NewReplacer(
	"<", "_",
	">", "_",
	":", "_",
	"\"", "_",
	"/", "_",
	"\\", "_",
	"|", "_",
	"?", "_",
	"*", "_",
)

// asciiFold decomposes accented characters and drops anything that does not
// survive as plain ASCII.
var asciiFold = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
)

// SafeTrackName converts a track title into a filename base (no extension).
// The transformation is idempotent: applying it to its own output returns the
// same string. Empty or placeholder titles become "unknown_track".
func SafeTrackName(title string) string {
	name := sanitize(title, maxTrackNameLen)
	if name == "" {
		return "unknown_track"
	}
	return name
}

// SafeFolderName converts a playlist or album title into a directory name.
func SafeFolderName(title string) string {
	name := sanitize(title, maxFolderNameLen)
	if name == "" {
		return "Unknown Folder"
	}
	return name
}

func sanitize(value string, maxLen int) string {
	value = strings.TrimSpace(value)
	if value == "" || value == "Unknown" {
		return ""
	}

	value = unsafeReplacer.Replace(value)
	value = stripControl(value)

	if folded, _, err := transform.String(asciiFold, value); err == nil {
		value = folded
	}

	// Collapse runs of whitespace into single spaces.
	value = strings.Join(strings.Fields(value), " ")

	if len(value) > maxLen {
		value = strings.TrimSpace(value[:maxLen])
	}
	return value
}

func stripControl(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
