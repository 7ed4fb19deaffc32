package probe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Runner runs one external enumeration tool and captures its stdout.
// Locating the tool binaries and augmenting the search path belongs to
// the launcher; the pipeline only needs this capability.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs tools found on the host PATH.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: %w", name, ErrTimeout)
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", name, ErrToolUnavailable)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}
