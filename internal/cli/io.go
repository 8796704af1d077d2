package cli

import (
	"fmt"
	"io"
)

// IO bundles the command's output streams. Children of the driver
// write to the same streams, so everything a run prints interleaves
// the way a CI log expects.
type IO struct {
	out    io.Writer
	errOut io.Writer
}

// NewIO creates a new IO instance.
func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut}
}

// Println writes to stdout.
func (o *IO) Println(a ...any) {
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout.
func (o *IO) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// ErrPrintf writes formatted output to stderr.
func (o *IO) ErrPrintf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.errOut, format, a...)
}

// Out returns the stdout writer, for handing to subprocesses.
func (o *IO) Out() io.Writer {
	return o.out
}

// ErrOut returns the stderr writer, for handing to subprocesses.
func (o *IO) ErrOut() io.Writer {
	return o.errOut
}
