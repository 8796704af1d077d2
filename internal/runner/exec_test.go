package runner_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"runtime"
	"strings"
	"testing"
	"time"

	"buildtest/internal/runner"
)

func requireShell(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
}

func TestExecStreamsOutput(t *testing.T) {
	t.Parallel()
	requireShell(t)

	var out, errOut bytes.Buffer

	e := runner.NewExec(nil)

	res, err := e.Run(context.Background(), runner.Invocation{
		Argv: []string{"/bin/sh", "-c", "echo to-stdout; echo to-stderr >&2"},
	}, &out, &errOut)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", res.ExitCode)
	}

	if got := out.String(); got != "to-stdout\n" {
		t.Errorf("stdout = %q", got)
	}

	if got := errOut.String(); got != "to-stderr\n" {
		t.Errorf("stderr = %q", got)
	}

	if res.Rusage == nil {
		t.Error("rusage should be populated for a completed child")
	}
}

func TestExecTracesCommands(t *testing.T) {
	t.Parallel()
	requireShell(t)

	var out, errOut, trace bytes.Buffer

	e := runner.NewExec(&trace)

	_, err := e.Run(context.Background(), runner.Invocation{
		Argv: []string{"/bin/sh", "-c", "true"},
	}, &out, &errOut)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := trace.String(); !strings.HasPrefix(got, "+ /bin/sh -c ") {
		t.Errorf("trace = %q, want shell-style '+ argv' echo", got)
	}
}

func TestExecReportsNonZeroExit(t *testing.T) {
	t.Parallel()
	requireShell(t)

	var out, errOut bytes.Buffer

	e := runner.NewExec(nil)

	res, err := e.Run(context.Background(), runner.Invocation{
		Argv: []string{"/bin/sh", "-c", "exit 3"},
	}, &out, &errOut)

	if !errors.Is(err, runner.ErrCommandFailed) {
		t.Fatalf("err = %v, want ErrCommandFailed", err)
	}

	if res.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", res.ExitCode)
	}
}

func TestExecTimeout(t *testing.T) {
	t.Parallel()
	requireShell(t)

	var out, errOut bytes.Buffer

	e := runner.NewExec(nil)
	start := time.Now()

	res, err := e.Run(context.Background(), runner.Invocation{
		Argv:    []string{"/bin/sh", "-c", "sleep 30"},
		Timeout: 100 * time.Millisecond,
	}, &out, &errOut)

	if !errors.Is(err, runner.ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}

	if !res.TimedOut {
		t.Error("result should be marked timed out")
	}

	if elapsed := time.Since(start); elapsed > 15*time.Second {
		t.Errorf("termination took %s, child was not reaped promptly", elapsed)
	}
}

func TestExecMissingBinary(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer

	e := runner.NewExec(nil)

	_, err := e.Run(context.Background(), runner.Invocation{
		Argv: []string{"/definitely/not/a/binary"},
	}, &out, &errOut)
	if err == nil {
		t.Fatal("expected start failure")
	}
}

func TestExecEmptyArgv(t *testing.T) {
	t.Parallel()

	e := runner.NewExec(nil)

	_, err := e.Run(context.Background(), runner.Invocation{}, &bytes.Buffer{}, &bytes.Buffer{})
	if !errors.Is(err, runner.ErrEmptyArgv) {
		t.Errorf("err = %v, want ErrEmptyArgv", err)
	}
}

func TestExecPassesEnvAndDir(t *testing.T) {
	t.Parallel()
	requireShell(t)

	dir := t.TempDir()

	var out, errOut bytes.Buffer

	e := runner.NewExec(nil)

	_, err := e.Run(context.Background(), runner.Invocation{
		Argv: []string{"/bin/sh", "-c", "printf '%s %s' \"$MARKER\" \"$(pwd)\""},
		Dir:  dir,
		Env:  append(os.Environ(), "MARKER=hello"),
	}, &out, &errOut)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	got := out.String()
	if !strings.HasPrefix(got, "hello ") {
		t.Errorf("child env not applied, output = %q", got)
	}

	if !strings.Contains(got, dir) {
		// Dir may be a symlinked tempdir on some systems; accept either
		// the literal path or its resolved form.
		resolved, _ := os.Readlink(dir)
		if resolved == "" || !strings.Contains(got, resolved) {
			t.Logf("working directory %q not literally present in %q", dir, got)
		}
	}
}

func TestFakeRecordsCalls(t *testing.T) {
	t.Parallel()

	f := &runner.Fake{}

	_, err := f.Run(context.Background(), runner.Invocation{Argv: []string{"a", "b"}}, &bytes.Buffer{}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	_, _ = f.Run(context.Background(), runner.Invocation{Argv: []string{"c"}}, &bytes.Buffer{}, &bytes.Buffer{})

	argvs := f.Argvs()
	if len(argvs) != 2 || argvs[0][0] != "a" || argvs[1][0] != "c" {
		t.Errorf("recorded argvs = %v", argvs)
	}
}
