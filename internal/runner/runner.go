// Package runner executes the external commands the driver sequences.
//
// Every command is traced to stderr before it runs, streams its output
// unmodified, and reports wall-clock and CPU usage afterward. A single
// invocation may carry a wall-clock timeout; expiry terminates the
// child and surfaces as [ErrTimeout].
package runner

import (
	"context"
	"errors"
	"io"
	"time"
)

// Invocation describes one external command.
type Invocation struct {
	// Argv is the command and its arguments. Must be non-empty.
	Argv []string

	// Dir is the working directory. Empty inherits the caller's.
	Dir string

	// Env is the complete child environment. Nil inherits the
	// caller's; the driver always passes an explicit environment.
	Env []string

	// Timeout bounds the command's wall-clock time. Zero means
	// unbounded.
	Timeout time.Duration
}

// Rusage is the resource usage of a completed command, the moral
// equivalent of `ptime -m`.
type Rusage struct {
	// User and Sys are the CPU times consumed by the child.
	User time.Duration `json:"user"`
	Sys  time.Duration `json:"sys"`

	// MaxRSS is the maximum resident set size in bytes, the
	// high-water mark across the process's reaped children.
	MaxRSS int64 `json:"max_rss"`
}

// Result describes a completed (or terminated) invocation.
type Result struct {
	// ExitCode is the child's exit code. -1 when the child was
	// terminated by a signal or never ran.
	ExitCode int `json:"exit_code"`

	// Elapsed is wall-clock duration from start to wait.
	Elapsed time.Duration `json:"elapsed"`

	// TimedOut reports whether the invocation hit its Timeout.
	TimedOut bool `json:"timed_out,omitempty"`

	// Rusage is present when the child ran at all.
	Rusage *Rusage `json:"rusage,omitempty"`
}

// Runner runs external commands. Implementations: [Exec] for real
// processes, [Fake] for tests.
type Runner interface {
	// Run executes inv, streaming the child's stdout and stderr to
	// out and errOut. The returned Result is meaningful even when err
	// is non-nil, as long as the child started.
	Run(ctx context.Context, inv Invocation, out, errOut io.Writer) (Result, error)
}

var (
	// ErrEmptyArgv means the invocation had no command.
	ErrEmptyArgv = errors.New("empty command")

	// ErrTimeout means the invocation exceeded its wall-clock bound.
	ErrTimeout = errors.New("command timed out")

	// ErrCommandFailed means the child exited non-zero.
	ErrCommandFailed = errors.New("command failed")

	// ErrStreamCopy means pumping the child's output failed.
	ErrStreamCopy = errors.New("copying command output")
)
