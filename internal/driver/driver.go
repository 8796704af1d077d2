// Package driver sequences a build-and-test job.
//
// A run is strictly sequential: toolchain version reporting, scratch
// directory creation, the environment-setup collaborator, the
// prerequisite installer, the test runner under a wall-clock bound,
// then the teardown check that the scratch directory is empty again.
// The first error anywhere aborts the remainder of the sequence; there
// are no retries and no recovery paths.
package driver

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"code.cloudfoundry.org/clock"

	"buildtest/internal/config"
	"buildtest/internal/fs"
	"buildtest/internal/runner"
	"buildtest/internal/scratch"
)

// Options configures a [Driver]. Zero fields get production defaults.
type Options struct {
	Config config.Config

	// FS defaults to the real filesystem.
	FS fs.FS

	// Runner defaults to [runner.Exec] tracing to ErrOut.
	Runner runner.Runner

	// Clock defaults to the wall clock.
	Clock clock.Clock

	// Env is the ambient environment the run starts from.
	Env map[string]string

	// Out and ErrOut receive the children's streams and the driver's
	// own progress output.
	Out    io.Writer
	ErrOut io.Writer
}

// Driver runs one build-and-test job.
type Driver struct {
	cfg     config.Config
	fsys    fs.FS
	run     runner.Runner
	clk     clock.Clock
	env     map[string]string
	out     io.Writer
	errOut  io.Writer
	scratch *scratch.Dir
	report  *Report
}

// New builds a Driver from opts.
func New(opts Options) *Driver {
	fsys := opts.FS
	if fsys == nil {
		fsys = fs.NewReal()
	}

	errOut := opts.ErrOut
	if errOut == nil {
		errOut = io.Discard
	}

	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	run := opts.Runner
	if run == nil {
		run = runner.NewExec(errOut)
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.NewClock()
	}

	env := make(map[string]string, len(opts.Env))
	for k, v := range opts.Env {
		env[k] = v
	}

	return &Driver{
		cfg:     opts.Config,
		fsys:    fsys,
		run:     run,
		clk:     clk,
		env:     env,
		out:     out,
		errOut:  errOut,
		scratch: scratch.New(fsys, opts.Config.ScratchDir),
	}
}

type step struct {
	name string
	fn   func(context.Context) error
}

// Run executes the job sequence. The returned error is the first step
// failure; later steps do not execute. When a report path is
// configured, the run report is written whether or not the run passed.
func (d *Driver) Run(ctx context.Context) (rerr error) {
	d.report = newReport(d.cfg.Job, d.clk.Now())

	defer func() {
		if err := d.writeReport(); err != nil && rerr == nil {
			rerr = err
		}
	}()

	steps := []step{
		{"versions", d.stepVersions},
		{"scratch", d.stepScratch},
		{"env-setup", d.stepEnvSetup},
		{"prereqs", d.stepPrereqs},
		{"test", d.stepTest},
		{"teardown", d.stepTeardown},
	}

	for _, s := range steps {
		fmt.Fprintf(d.errOut, "### %s\n", s.name)

		start := d.clk.Now()
		err := s.fn(ctx)

		d.report.record(s.name, d.clk.Since(start), err)

		if err != nil {
			return fmt.Errorf("step %s: %w", s.name, err)
		}
	}

	d.report.Result = ResultPass

	return nil
}

// stepVersions prints toolchain version information.
func (d *Driver) stepVersions(ctx context.Context) error {
	for _, argv := range d.cfg.VersionCommands {
		if _, err := d.exec(ctx, argv, nil, 0, d.out); err != nil {
			return err
		}
	}

	return nil
}

// stepScratch creates the dedicated scratch directory.
func (d *Driver) stepScratch(context.Context) error {
	if err := d.scratch.Create(); err != nil {
		return err
	}

	fmt.Fprintf(d.errOut, "scratch dir: %s\n", d.scratch.Path())

	return nil
}

// stepEnvSetup sources the environment-setup collaborator in a shell
// and carries the PATH it produces into every later command. The
// script's own output goes to stderr so the captured stdout is exactly
// the resulting PATH.
func (d *Driver) stepEnvSetup(ctx context.Context) error {
	if d.cfg.EnvSetupScript == "" {
		fmt.Fprintln(d.errOut, "env-setup: no script configured, skipping")

		return nil
	}

	var path strings.Builder

	argv := []string{"/bin/sh", "-c", `. "$0" >&2 && printf '%s' "$PATH"`, d.cfg.EnvSetupScript}
	if _, err := d.exec(ctx, argv, nil, 0, &path); err != nil {
		return err
	}

	if p := path.String(); p != "" {
		d.env["PATH"] = p
	}

	return nil
}

// stepPrereqs invokes the prerequisite installer with its
// non-interactive confirmation flag.
func (d *Driver) stepPrereqs(ctx context.Context) error {
	if d.cfg.PrereqScript == "" {
		fmt.Fprintln(d.errOut, "prereqs: no script configured, skipping")

		return nil
	}

	argv := []string{d.cfg.PrereqScript}
	if d.cfg.PrereqConfirmFlag != "" {
		argv = append(argv, d.cfg.PrereqConfirmFlag)
	}

	_, err := d.exec(ctx, argv, nil, 0, d.out)

	return err
}

// stepTest runs the test runner with strict compiler flags, temp files
// redirected into the scratch dir, and the configured wall-clock bound.
func (d *Driver) stepTest(ctx context.Context) error {
	extra := make(map[string]string, len(d.cfg.StrictEnv)+1)
	for k, v := range d.cfg.StrictEnv {
		extra[k] = v
	}

	extra["TMPDIR"] = d.scratch.Path()

	res, err := d.exec(ctx, d.cfg.TestCommand, extra, d.cfg.TestTimeout, d.out)

	d.report.Test = &res
	d.report.Host = collectHost()

	if res.Rusage != nil {
		d.printResourceSummary(res)
	}

	return err
}

// stepTeardown lists anything the test run left in the scratch dir,
// then removes it. A non-empty directory fails the run.
func (d *Driver) stepTeardown(context.Context) error {
	leftovers, err := d.scratch.Leftovers()
	if err != nil {
		return err
	}

	for _, f := range leftovers {
		fmt.Fprintf(d.errOut, "leftover: %s\n", f)
	}

	return d.scratch.Remove()
}

// exec runs one command through the Runner with the driver's current
// environment, plus extra vars, in the job's working directory.
func (d *Driver) exec(ctx context.Context, argv []string, extra map[string]string, timeout time.Duration, out io.Writer) (runner.Result, error) {
	inv := runner.Invocation{
		Argv:    argv,
		Dir:     d.cfg.EffectiveCwd,
		Env:     d.envSlice(extra),
		Timeout: timeout,
	}

	return d.run.Run(ctx, inv, out, d.errOut)
}

// envSlice flattens the driver environment plus extra into the sorted
// KEY=value form the child expects.
func (d *Driver) envSlice(extra map[string]string) []string {
	merged := make(map[string]string, len(d.env)+len(extra))
	for k, v := range d.env {
		merged[k] = v
	}

	for k, v := range extra {
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+merged[k])
	}

	return out
}
