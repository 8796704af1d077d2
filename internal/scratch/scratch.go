// Package scratch manages the dedicated temporary directory a job run
// writes under, and enforces that it is empty again at teardown.
//
// Lifecycle: the directory is created empty before the test phase, may
// be populated arbitrarily by the test run, and must be empty again at
// teardown. Removal uses rmdir semantics so a non-empty directory
// fails the run rather than being silently cleaned up.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"buildtest/internal/fs"
)

const dirPerm = 0o755

// Dir is the dedicated scratch directory for one run.
type Dir struct {
	fsys fs.FS
	path string
}

// New returns a Dir at path. Nothing is created until [Dir.Create].
func New(fsys fs.FS, path string) *Dir {
	return &Dir{fsys: fsys, path: path}
}

// Path returns the directory's absolute path.
func (d *Dir) Path() string {
	return d.path
}

// Create makes the scratch directory, creating its parent first if
// needed. The directory itself must not pre-exist: a leftover dir from
// an earlier run means stale state, which is a failure, not something
// to adopt.
func (d *Dir) Create() error {
	if err := d.fsys.MkdirAll(filepath.Dir(d.path), dirPerm); err != nil {
		return fmt.Errorf("creating scratch parent: %w", err)
	}

	if err := d.fsys.Mkdir(d.path, dirPerm); err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: %s", ErrExists, d.path)
		}

		return fmt.Errorf("creating scratch dir: %w", err)
	}

	return nil
}

// Leftovers lists everything under the scratch directory, as sorted
// slash-separated paths relative to it. Empty means the test run
// cleaned up after itself.
func (d *Dir) Leftovers() ([]string, error) {
	var files []string

	if err := d.collect(d.path, "", &files); err != nil {
		return nil, err
	}

	sort.Strings(files)

	return files, nil
}

func (d *Dir) collect(dir, rel string, files *[]string) error {
	entries, err := d.fsys.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("listing %s: %w", dir, err)
	}

	for _, e := range entries {
		entryRel := e.Name()
		if rel != "" {
			entryRel = rel + "/" + e.Name()
		}

		*files = append(*files, entryRel)

		if e.IsDir() {
			if err := d.collect(filepath.Join(dir, e.Name()), entryRel, files); err != nil {
				return err
			}
		}
	}

	return nil
}

// Remove deletes the scratch directory. The directory must be empty;
// leftover files fail the removal and are reported in the error.
func (d *Dir) Remove() error {
	err := d.fsys.Remove(d.path)
	if err == nil {
		return nil
	}

	leftovers, listErr := d.Leftovers()
	if listErr != nil || len(leftovers) == 0 {
		return fmt.Errorf("removing scratch dir: %w", err)
	}

	return &LeftoverError{Dir: d.path, Files: leftovers}
}
