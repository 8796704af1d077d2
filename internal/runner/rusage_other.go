//go:build unix && !linux && !darwin

package runner

// The BSDs and illumos report ru_maxrss in kilobytes.
func maxRSSBytes(maxrss int64) int64 {
	return maxrss * 1024
}
