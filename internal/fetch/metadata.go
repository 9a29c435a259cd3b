package fetch

import (
	"strconv"

	"opuskit/internal/services/ffmpeg"
	"opuskit/internal/services/ytdlp"
	"opuskit/internal/textutil"
)

const (
	unknownTitle  = "Unknown Title"
	unknownArtist = "Unknown Artist"
)

// Metadata is the tag set written into a downloaded track.
type Metadata struct {
	Title       string
	Artist      string
	Album       string
	Genre       string
	TrackNumber int
	Year        int
}

// FromTrackInfo maps yt-dlp metadata onto the tag set, applying the fallback
// chain: artist falls back to the uploader, album to the playlist title.
func FromTrackInfo(info ytdlp.TrackInfo) Metadata {
	meta := Metadata{
		Title:       info.Title,
		Artist:      info.Artist,
		Album:       info.Album,
		Genre:       info.Genre,
		TrackNumber: info.TrackNumber,
		Year:        info.ReleaseYear,
	}
	if meta.Title == "" {
		meta.Title = unknownTitle
	}
	if meta.Artist == "" {
		meta.Artist = info.Uploader
	}
	if meta.Artist == "" {
		meta.Artist = unknownArtist
	}
	if meta.Album == "" {
		meta.Album = info.Playlist
	}
	if meta.Year == 0 && len(info.ReleaseDate) >= 4 {
		if year, err := strconv.Atoi(info.ReleaseDate[:4]); err == nil {
			meta.Year = year
		}
	}
	return meta
}

// FileName derives the output filename from the title alone. The artist is
// deliberately not part of the name; it lives in the tags.
func (m Metadata) FileName() string {
	return textutil.SafeTrackName(m.Title) + ".opus"
}

// Tags returns the ffmpeg metadata arguments in a stable order. Empty fields
// are omitted.
func (m Metadata) Tags() []ffmpeg.Tag {
	tags := []ffmpeg.Tag{
		{Key: "title", Value: m.Title},
		{Key: "artist", Value: m.Artist},
	}
	if m.Album != "" {
		tags = append(tags, ffmpeg.Tag{Key: "album", Value: m.Album})
	}
	if m.TrackNumber > 0 {
		tags = append(tags, ffmpeg.Tag{Key: "track", Value: strconv.Itoa(m.TrackNumber)})
	}
	if m.Year > 0 {
		tags = append(tags, ffmpeg.Tag{Key: "date", Value: strconv.Itoa(m.Year)})
	}
	if m.Genre != "" {
		tags = append(tags, ffmpeg.Tag{Key: "genre", Value: m.Genre})
	}
	return tags
}
