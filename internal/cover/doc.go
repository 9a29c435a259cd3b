// Package cover locates album artwork on disk and embeds it into audio
// files as a front-cover picture. Opus and Ogg files get a Vorbis comment
// carrying a FLAC picture block via ffmpeg; MP3 files get an ID3v2 APIC
// frame written in place.
package cover
