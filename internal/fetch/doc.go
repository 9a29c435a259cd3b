// Package fetch downloads single tracks and playlists from YouTube Music as
// tagged Opus files. Downloads try a sequence of strategies, failures land
// in a plain-text log that later retry runs replay, and completed URLs can
// be archived in SQLite so they are never fetched twice.
package fetch
