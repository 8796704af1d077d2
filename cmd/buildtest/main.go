// Package main provides buildtest, a CI job driver that runs a
// build-and-test sequence with fail-fast error propagation and
// scratch-directory hygiene enforcement.
package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"buildtest/internal/cli"
)

func main() {
	environ := os.Environ()
	env := make(map[string]string, len(environ))

	for _, e := range environ {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	exitCode := cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args, env, sigCh)

	os.Exit(exitCode)
}
