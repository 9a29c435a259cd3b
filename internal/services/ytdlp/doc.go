// Package ytdlp wraps the yt-dlp command line interface: JSON metadata
// queries, flat playlist listings, direct media URL resolution, and the two
// download modes the fetcher uses.
package ytdlp
