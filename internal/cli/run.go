// Package cli implements the buildtest command line interface.
package cli

import (
	"context"
	"errors"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"buildtest/internal/config"
)

// Run is the main entry point. Returns the process exit code.
//
// sigCh, when non-nil, cancels the run's context on the first signal;
// a cancelled child surfaces as an ordinary command failure, keeping
// the fail-fast path uniform.
func Run(_ io.Reader, out, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	o := NewIO(out, errOut)

	if len(args) < 2 {
		printUsage(o)

		return 0
	}

	globals := flag.NewFlagSet("buildtest", flag.ContinueOnError)
	globals.SetOutput(io.Discard)
	globals.SetInterspersed(false)

	cwd := globals.StringP("cwd", "C", "", "run as if started in this directory")
	cfgPath := globals.StringP("config", "c", "", "config file (default "+config.ConfigFileName+" in the working directory)")
	scratchRoot := globals.String("scratch-root", "", "override the scratch root directory")
	timeout := globals.String("timeout", "", "override the test-runner timeout")
	report := globals.String("report", "", "write the run report to this path")

	if err := globals.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(o)

			return 0
		}

		o.ErrPrintln("error:", err)
		printUsage(o)

		return 1
	}

	rest := globals.Args()
	if len(rest) == 0 {
		printUsage(o)

		return 0
	}

	name := rest[0]
	if name == "-h" || name == "--help" || name == "help" {
		printUsage(o)

		return 0
	}

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride: *cwd,
		ConfigPath:      *cfgPath,
		Overrides: config.Overrides{
			ScratchRoot: *scratchRoot,
			Timeout:     *timeout,
			ReportPath:  *report,
		},
		Env: env,
	})
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			if _, ok := <-sigCh; ok {
				cancel()
			}
		}()
	}

	for _, c := range commands(cfg, env) {
		if c.Name() == name {
			return c.Run(ctx, o, rest[1:])
		}
	}

	o.ErrPrintln("error: unknown command:", name)
	printUsage(o)

	return 1
}

func commands(cfg config.Config, env map[string]string) []*Command {
	return []*Command{
		newRunCommand(cfg, env),
		newMetaCommand(cfg),
		newPrintConfigCommand(cfg),
	}
}

func printUsage(o *IO) {
	o.Println("Usage: buildtest [global flags] <command> [flags]")
	o.Println()
	o.Println("CI job driver: runs the build-and-test sequence with scratch-dir")
	o.Println("hygiene enforcement and fail-fast error propagation.")
	o.Println()
	o.Println("Commands:")

	for _, c := range commands(config.Config{}, nil) {
		o.Println(c.HelpLine())
	}

	o.Println()
	o.Println("Global flags:")
	o.Println("  -C, --cwd <dir>        run as if started in <dir>")
	o.Println("  -c, --config <file>    config file (default " + config.ConfigFileName + ")")
	o.Println("      --scratch-root <dir>  override the scratch root")
	o.Println("      --timeout <dur>    override the test-runner timeout")
	o.Println("      --report <file>    write the run report to <file>")
}
