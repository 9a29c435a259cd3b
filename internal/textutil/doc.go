// Package textutil derives filesystem-safe file and folder names from
// track and playlist titles reported by the downloader.
package textutil
