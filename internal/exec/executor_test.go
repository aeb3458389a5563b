package exec

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor_Run(t *testing.T) {
	e := New()

	t.Run("captures stdout", func(t *testing.T) {
		result, err := e.Run(context.Background(), &RunOptions{
			Name: "echo",
			Args: []string{"hello"},
		})

		require.NoError(t, err)
		assert.Equal(t, "hello\n", string(result.Stdout))
		assert.Empty(t, result.Stderr)
		assert.Equal(t, 0, result.ExitCode)
	})

	t.Run("captures exit code on failure", func(t *testing.T) {
		result, err := e.Run(context.Background(), &RunOptions{
			Name: "sh",
			Args: []string{"-c", "echo broken >&2; exit 3"},
		})

		var exitErr *exec.ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 3, result.ExitCode)
		assert.Equal(t, "broken\n", string(result.Stderr))
	})

	t.Run("streams to provided writers", func(t *testing.T) {
		var out, errOut bytes.Buffer
		result, err := e.Run(context.Background(), &RunOptions{
			Name:   "sh",
			Args:   []string{"-c", "echo out; echo err >&2"},
			Stdout: &out,
			Stderr: &errOut,
		})

		require.NoError(t, err)
		assert.Nil(t, result.Stdout)
		assert.Nil(t, result.Stderr)
		assert.Equal(t, "out\n", out.String())
		assert.Equal(t, "err\n", errOut.String())
	})

	t.Run("connects stdin", func(t *testing.T) {
		result, err := e.Run(context.Background(), &RunOptions{
			Name:  "cat",
			Stdin: strings.NewReader("piped input"),
		})

		require.NoError(t, err)
		assert.Equal(t, "piped input", string(result.Stdout))
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := e.Run(ctx, &RunOptions{Name: "sleep", Args: []string{"10"}})

		require.Error(t, err)
		assert.True(t, errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "signal: killed"),
			"expected context deadline or killed signal, got: %v", err)
	})

	t.Run("returns error for nonexistent command", func(t *testing.T) {
		result, err := e.Run(context.Background(), &RunOptions{Name: "nonexistent_command_12345"})

		require.Error(t, err)
		assert.Equal(t, -1, result.ExitCode)
	})
}

func TestExecutor_LookPath(t *testing.T) {
	e := New()

	path, err := e.LookPath("sh")
	require.NoError(t, err)
	assert.NotEmpty(t, path)

	_, err = e.LookPath("nonexistent_command_12345")
	var execErr *exec.Error
	assert.ErrorAs(t, err, &execErr)
}
