// Package ffmpeg wraps the ffmpeg command line interface for stream-copy
// remuxing, metadata tagging, and attached-picture writes. Audio samples are
// never re-encoded here; every operation is a container rewrite.
package ffmpeg
