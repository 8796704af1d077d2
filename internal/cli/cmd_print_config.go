package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"buildtest/internal/config"
)

var errPrintConfigTakesNoArgs = errors.New("print-config takes no arguments")

func newPrintConfigCommand(cfg config.Config) *Command {
	return &Command{
		Usage: "print-config",
		Short: "Print the effective configuration",
		Long: "Print the fully resolved configuration after defaults, the\n" +
			"config file, flag overrides, and environment expansion.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return errPrintConfigTakesNoArgs
			}

			if cfg.Source != "" {
				o.ErrPrintln("config file:", cfg.Source)
			} else {
				o.ErrPrintln("config file: (none, built-in defaults)")
			}

			o.ErrPrintln("scratch dir:", cfg.ScratchDir)

			b, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}

			o.Println(string(b))

			return nil
		},
	}
}
