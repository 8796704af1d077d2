package cli

import (
	"context"
	"errors"

	"buildtest/internal/config"
	"buildtest/internal/driver"
	"buildtest/internal/runner"
)

// ErrRunTakesNoArgs: the run's behavior is fixed by config, not argv.
var ErrRunTakesNoArgs = errors.New("run takes no arguments")

func newRunCommand(cfg config.Config, env map[string]string) *Command {
	return &Command{
		Usage: "run",
		Short: "Execute the build-and-test sequence",
		Long: "Execute the job sequence: toolchain versions, scratch dir\n" +
			"creation, env-setup, prerequisite install, the test runner under\n" +
			"a wall-clock timeout, and the empty-scratch-dir teardown check.\n" +
			"The first failure aborts the rest of the sequence.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return ErrRunTakesNoArgs
			}

			d := driver.New(driver.Options{
				Config: cfg,
				Runner: runner.NewExec(o.ErrOut()),
				Env:    env,
				Out:    o.Out(),
				ErrOut: o.ErrOut(),
			})

			return d.Run(ctx)
		},
	}
}
