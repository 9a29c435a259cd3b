// Package media classifies directory entries into audio and image files and
// implements the filename matching heuristic shared by the cleanup and
// embedding tools.
package media
