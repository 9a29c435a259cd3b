package ytdlp

import "fmt"

// TrackInfo is the subset of yt-dlp's --dump-json output the fetcher uses.
type TrackInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Uploader    string `json:"uploader"`
	Album       string `json:"album"`
	Playlist    string `json:"playlist"`
	TrackNumber int    `json:"track_number"`
	ReleaseYear int    `json:"release_year"`
	ReleaseDate string `json:"release_date"`
	Genre       string `json:"genre"`
}

// PlaylistEntry is one item of a flat-playlist listing.
type PlaylistEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// PlaylistInfo is the decoded --flat-playlist --dump-single-json payload.
type PlaylistInfo struct {
	Title   string          `json:"title"`
	Entries []PlaylistEntry `json:"entries"`
}

// WatchURL builds the canonical YouTube Music URL for a playlist entry ID.
func WatchURL(id string) string {
	return fmt.Sprintf("https://music.youtube.com/watch?v=%s", id)
}
