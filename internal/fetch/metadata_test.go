package fetch

import (
	"testing"

	"opuskit/internal/services/ytdlp"
)

func TestFromTrackInfoFallbackChain(t *testing.T) {
	meta := FromTrackInfo(ytdlp.TrackInfo{
		Title:    "A Song",
		Uploader: "Channel Name",
		Playlist: "Mix of the Year",
	})
	if meta.Artist != "Channel Name" {
		t.Fatalf("artist should fall back to uploader, got %q", meta.Artist)
	}
	if meta.Album != "Mix of the Year" {
		t.Fatalf("album should fall back to playlist, got %q", meta.Album)
	}
}

func TestFromTrackInfoUnknownDefaults(t *testing.T) {
	meta := FromTrackInfo(ytdlp.TrackInfo{})
	if meta.Title != "Unknown Title" || meta.Artist != "Unknown Artist" {
		t.Fatalf("unexpected defaults: %+v", meta)
	}
}

func TestFromTrackInfoYearFromReleaseDate(t *testing.T) {
	meta := FromTrackInfo(ytdlp.TrackInfo{Title: "x", ReleaseDate: "20210615"})
	if meta.Year != 2021 {
		t.Fatalf("year = %d, want 2021", meta.Year)
	}

	meta = FromTrackInfo(ytdlp.TrackInfo{Title: "x", ReleaseYear: 1999, ReleaseDate: "20210615"})
	if meta.Year != 1999 {
		t.Fatalf("release_year should win over release_date, got %d", meta.Year)
	}
}

func TestFileNameSanitizesTitle(t *testing.T) {
	meta := Metadata{Title: "Song: Title?"}
	if got := meta.FileName(); got != "Song_ Title_.opus" {
		t.Fatalf("filename = %q", got)
	}
}

func TestTagsOmitEmptyFields(t *testing.T) {
	meta := Metadata{Title: "T", Artist: "A"}
	tags := meta.Tags()
	if len(tags) != 2 {
		t.Fatalf("expected only title and artist, got %+v", tags)
	}

	meta = Metadata{Title: "T", Artist: "A", Album: "L", Genre: "G", TrackNumber: 7, Year: 2020}
	tags = meta.Tags()
	keys := make([]string, 0, len(tags))
	for _, tag := range tags {
		keys = append(keys, tag.Key)
	}
	want := []string{"title", "artist", "album", "track", "date", "genre"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("tag order = %v, want %v", keys, want)
		}
	}
}
