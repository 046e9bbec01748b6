package vault

import "syscall"

// DiskUsageFunc reports the percentage of the filesystem holding path
// that is currently in use, for the health report's storage_usage_percent
// field (spec.md §4.8). Like LivenessFunc, it is injectable so tests
// don't depend on actual host disk capacity.
type DiskUsageFunc func(path string) (float64, error)

// DefaultDiskUsage statfs's path and reports used space as a percentage
// of total capacity. It is best-effort: callers treat an error as
// "unknown" rather than fatal.
func DefaultDiskUsage(path string) (float64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, err
	}
	if stat.Blocks == 0 {
		return 0, nil
	}
	used := stat.Blocks - stat.Bavail
	return float64(used) / float64(stat.Blocks) * 100, nil
}
