// Package fs provides the filesystem abstraction used by the driver.
//
// Two implementations are provided:
//   - [Real]: production implementation wrapping the [os] package
//   - [Faulty]: testing implementation that returns scripted errors
//
// The interface is deliberately small. The driver only creates
// directories, inspects them, removes them, and writes report files;
// everything else goes through the commands it spawns.
package fs

import "os"

// FS defines the filesystem operations the driver performs.
type FS interface {
	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic writes data to a file atomically.
	// Uses a temp file + rename to prevent partial writes on crash.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// ReadDir reads a directory and returns its entries sorted by name.
	// See [os.ReadDir].
	ReadDir(path string) ([]os.DirEntry, error)

	// Mkdir creates a single directory. See [os.Mkdir].
	// Fails if the directory already exists; the driver relies on this
	// to detect a dirty scratch location.
	Mkdir(path string, perm os.FileMode) error

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	// No error if the directory already exists.
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	// Returns [os.ErrNotExist] if the file doesn't exist.
	Stat(path string) (os.FileInfo, error)

	// Remove deletes a file or empty directory. See [os.Remove].
	// Removing a non-empty directory fails; the teardown check relies
	// on this.
	Remove(path string) error
}
