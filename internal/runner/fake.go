package runner

import (
	"context"
	"io"
	"sync"
)

// Fake is a scripted [Runner] for tests. It records every invocation
// and delegates to Handler, or reports success when Handler is nil.
type Fake struct {
	// Handler decides the outcome of each call. The call index is the
	// position in Calls.
	Handler func(call int, inv Invocation, out, errOut io.Writer) (Result, error)

	mu    sync.Mutex
	calls []Invocation
}

// Run implements [Runner].
func (f *Fake) Run(ctx context.Context, inv Invocation, out, errOut io.Writer) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{ExitCode: -1}, err
	}

	f.mu.Lock()
	call := len(f.calls)
	f.calls = append(f.calls, inv)
	f.mu.Unlock()

	if f.Handler == nil {
		return Result{}, nil
	}

	return f.Handler(call, inv, out, errOut)
}

// Calls returns a copy of the recorded invocations, in order.
func (f *Fake) Calls() []Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Invocation, len(f.calls))
	copy(out, f.calls)

	return out
}

// Argvs returns just the recorded argv slices, for compact assertions.
func (f *Fake) Argvs() [][]string {
	calls := f.Calls()

	out := make([][]string, len(calls))
	for i, c := range calls {
		out[i] = c.Argv
	}

	return out
}

// Compile-time interface check.
var _ Runner = (*Fake)(nil)
