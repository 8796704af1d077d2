package cli

import (
	"context"
	"errors"

	"buildtest/internal/config"
)

var errMetaTakesNoArgs = errors.New("meta takes no arguments")

func newMetaCommand(cfg config.Config) *Command {
	return &Command{
		Usage: "meta",
		Short: "Print job metadata for the orchestrator",
		Long: "Print the declared job metadata (name, variety, target,\n" +
			"toolchain pin, output rules) as canonical JSON. The driver never\n" +
			"consumes this itself; the orchestration system does.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return errMetaTakesNoArgs
			}

			b, err := cfg.Job.JSON()
			if err != nil {
				return err
			}

			o.Printf("%s", b)

			return nil
		},
	}
}
