package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

type (
	// Runner starts external tools.
	Runner interface {
		Available(ctx context.Context, tool string) bool                      //tool can be started, probed with --version
		Run(ctx context.Context, tool string, args ...string) ([]byte, error) //stdout of a successful run
	}
	// ExecRunner runs tools found on PATH. A zero Timeout waits for the tool
	// however long it takes.
	ExecRunner struct {
		Timeout time.Duration
	}
)

func (r ExecRunner) context(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.Timeout)
}

func (r ExecRunner) Available(ctx context.Context, tool string) bool {
	ctx, cancel := r.context(ctx)
	defer cancel()
	err := exec.CommandContext(ctx, tool, "--version").Run()
	var exit *exec.ExitError
	return err == nil || errors.As(err, &exit) && ctx.Err() == nil
}

func (r ExecRunner) Run(ctx context.Context, tool string, args ...string) ([]byte, error) {
	ctx, cancel := r.context(ctx)
	defer cancel()
	cmd := exec.CommandContext(ctx, tool, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", tool, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return out, nil
}
