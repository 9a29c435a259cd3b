//go:build unix

package fileutil

import "golang.org/x/sys/unix"

// FreeBytes reports the free space available to unprivileged writes on the
// filesystem holding dir.
func FreeBytes(dir string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}
