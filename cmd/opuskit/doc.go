// Command opuskit manages a local Opus music library: it fetches tracks and
// playlists from YouTube Music, embeds cover art, and cleans leftover image
// files out of music folders.
package main
