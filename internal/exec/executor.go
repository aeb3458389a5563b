package exec

import (
	"bytes"
	"context"
	"os/exec"
)

type executor struct{}

// New returns an Executor backed by os/exec.
func New() Executor {
	return &executor{}
}

func (e *executor) Run(ctx context.Context, opts *RunOptions) (*Result, error) {
	cmd := exec.CommandContext(ctx, opts.Name, opts.Args...) //nolint:gosec // Launchers come from a fixed table, editors from $EDITOR
	cmd.Stdin = opts.Stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if opts.Stdout != nil {
		cmd.Stdout = opts.Stdout
	}
	cmd.Stderr = &stderr
	if opts.Stderr != nil {
		cmd.Stderr = opts.Stderr
	}

	err := cmd.Run()

	result := &Result{ExitCode: cmd.ProcessState.ExitCode()}
	if opts.Stdout == nil {
		result.Stdout = stdout.Bytes()
	}
	if opts.Stderr == nil {
		result.Stderr = stderr.Bytes()
	}
	return result, err
}

func (e *executor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
