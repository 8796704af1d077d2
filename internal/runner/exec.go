package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"code.cloudfoundry.org/clock"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

// waitDelay is how long a child gets to exit after its context is
// cancelled before it is killed outright.
const waitDelay = 10 * time.Second

// Exec runs commands as real OS processes.
type Exec struct {
	// Clock measures elapsed time. Nil uses the wall clock.
	Clock clock.Clock

	// Trace receives a "+ argv" line before each command, like a
	// shell running under `set -x`. Nil disables tracing.
	Trace io.Writer
}

// NewExec returns an Exec using the wall clock.
func NewExec(trace io.Writer) *Exec {
	return &Exec{Clock: clock.NewClock(), Trace: trace}
}

func (e *Exec) clock() clock.Clock {
	if e.Clock == nil {
		return clock.NewClock()
	}

	return e.Clock
}

// Run implements [Runner].
func (e *Exec) Run(ctx context.Context, inv Invocation, out, errOut io.Writer) (Result, error) {
	if len(inv.Argv) == 0 {
		return Result{ExitCode: -1}, ErrEmptyArgv
	}

	if e.Trace != nil {
		fmt.Fprintf(e.Trace, "+ %s\n", strings.Join(inv.Argv, " "))
	}

	if inv.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, inv.Argv[0], inv.Argv[1:]...)
	cmd.Dir = inv.Dir
	cmd.Env = inv.Env
	cmd.WaitDelay = waitDelay

	// On cancellation prefer SIGTERM so the child can flush its own
	// diagnostics; WaitDelay escalates to SIGKILL.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(unix.SIGTERM)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("stderr pipe: %w", err)
	}

	start := e.clock().Now()

	if err := cmd.Start(); err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("starting %s: %w", inv.Argv[0], err)
	}

	var pump errgroup.Group

	pump.Go(func() error { return copyStream(out, stdout) })
	pump.Go(func() error { return copyStream(errOut, stderr) })

	// Pipes must be drained before Wait closes them.
	pumpErr := pump.Wait()
	waitErr := cmd.Wait()

	res := Result{
		ExitCode: -1,
		Elapsed:  e.clock().Since(start),
		Rusage:   childRusage(cmd),
	}

	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if ctx.Err() != nil && inv.Timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res.TimedOut = true

		return res, fmt.Errorf("%w after %s: %s", ErrTimeout, inv.Timeout, inv.Argv[0])
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return res, fmt.Errorf("%w: %s: exit status %d", ErrCommandFailed, inv.Argv[0], res.ExitCode)
		}

		return res, fmt.Errorf("waiting for %s: %w", inv.Argv[0], waitErr)
	}

	if pumpErr != nil {
		return res, fmt.Errorf("%w: %w", ErrStreamCopy, pumpErr)
	}

	return res, nil
}

func copyStream(dst io.Writer, src io.Reader) error {
	if _, err := io.Copy(dst, src); err != nil {
		return err
	}

	return nil
}

// childRusage reads CPU time from the reaped child and the resident-set
// high-water mark across all reaped children. The high-water mark is
// process-wide, which matches the dominant-child case this driver cares
// about (one long test run dwarfing a few short setup commands).
func childRusage(cmd *exec.Cmd) *Rusage {
	ps := cmd.ProcessState
	if ps == nil {
		return nil
	}

	ru := &Rusage{
		User: ps.UserTime(),
		Sys:  ps.SystemTime(),
	}

	var usage unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_CHILDREN, &usage); err == nil {
		ru.MaxRSS = maxRSSBytes(usage.Maxrss)
	}

	return ru
}

// Compile-time interface check.
var _ Runner = (*Exec)(nil)
