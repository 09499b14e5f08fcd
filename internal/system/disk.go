// Package system reports on the filesystem holding clearurls' data.
package system

import (
	"fmt"
	"syscall"
)

// FreeSpace returns the bytes available to unprivileged users on the
// filesystem containing path.
func FreeSpace(path string) (uint64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// Usage returns the total and available bytes on the filesystem containing path.
func Usage(path string) (total, available uint64, err error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return stat.Blocks * uint64(stat.Bsize), stat.Bavail * uint64(stat.Bsize), nil
}

// LogBudget is the most disk the rotated log files may take, in bytes.
func LogBudget(maxMegabytes, maxBackups int) uint64 {
	if maxMegabytes <= 0 {
		maxMegabytes = 100 // lumberjack's default
	}
	return uint64(maxMegabytes) * uint64(maxBackups+1) << 20
}
