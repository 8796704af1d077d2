//go:build darwin

package runner

// Darwin reports ru_maxrss in bytes.
func maxRSSBytes(maxrss int64) int64 {
	return maxrss
}
