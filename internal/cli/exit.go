package cli

import (
	"errors"

	"github.com/tahsin716/syncbench"
	"github.com/tahsin716/syncbench/group"
	"github.com/tahsin716/syncbench/harness"
	"github.com/tahsin716/syncbench/syncx"
)

// Exit codes.
const (
	ExitOK        = 0
	ExitInput     = 1
	ExitInvariant = 2
)

// ExitCode maps a run error to the process exit code. Broken invariants,
// which are oracle mismatches, panicking jobs and poisoned locks, exit
// with ExitInvariant; everything else that fails exits with ExitInput.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		assertErr *harness.AssertionError
		poolPanic *syncbench.PanicError
		goPanic   *group.PanicError
	)
	switch {
	case errors.As(err, &assertErr),
		errors.As(err, &poolPanic),
		errors.As(err, &goPanic),
		errors.Is(err, syncx.ErrPriorHolderFailed):
		return ExitInvariant
	}
	return ExitInput
}
