package scratch

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExists means the scratch directory was already present at
	// creation time.
	ErrExists = errors.New("scratch directory already exists")

	// ErrNotEmpty means the test run left files behind.
	ErrNotEmpty = errors.New("scratch directory not empty")
)

// LeftoverError reports files the test run failed to clean up.
type LeftoverError struct {
	Dir   string
	Files []string
}

func (e *LeftoverError) Error() string {
	return fmt.Sprintf("%v: %s left behind %d file(s): %s",
		ErrNotEmpty, e.Dir, len(e.Files), strings.Join(e.Files, ", "))
}

func (e *LeftoverError) Unwrap() error {
	return ErrNotEmpty
}
