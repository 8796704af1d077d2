//go:build linux

package runner

// Linux reports ru_maxrss in kilobytes.
func maxRSSBytes(maxrss int64) int64 {
	return maxrss * 1024
}
