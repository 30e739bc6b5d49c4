package invoker

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaops/backstop/logging"
	"github.com/qaops/backstop/types"
)

func newTestInvoker(t *testing.T, out *bytes.Buffer) Invoker {
	t.Helper()

	inv, err := New(Config{
		WorkDir: t.TempDir(),
		Log:     logging.NewNop(),
		Stdout:  out,
		Stderr:  out,
	})
	require.NoError(t, err)
	return inv
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{Log: logging.NewNop()})
	require.Error(t, err)

	_, err = New(Config{WorkDir: t.TempDir()})
	require.Error(t, err)
}

func TestRunSuccess(t *testing.T) {
	var out bytes.Buffer
	inv := newTestInvoker(t, &out)

	result := inv.Run(context.Background(), types.Command{
		Args:        []string{"sh", "-c", "exit 0"},
		Description: "successful command",
	})

	assert.True(t, result.Completed)
	assert.True(t, result.Success())
	assert.Equal(t, 0, result.ExitCode)
	assert.NoError(t, result.LaunchErr)
	assert.Greater(t, result.Duration, time.Duration(0))
	assert.Contains(t, out.String(), "Running: successful command")
	assert.Contains(t, out.String(), "✅ Completed")
}

func TestRunChildFailure(t *testing.T) {
	var out bytes.Buffer
	inv := newTestInvoker(t, &out)

	result := inv.Run(context.Background(), types.Command{
		Args:        []string{"sh", "-c", "exit 3"},
		Description: "failing command",
	})

	// A non-zero child exit is a normal failure result, not a launch error.
	assert.True(t, result.Completed)
	assert.False(t, result.Success())
	assert.Equal(t, 3, result.ExitCode)
	assert.NoError(t, result.LaunchErr)
	assert.Contains(t, out.String(), "❌ Failed")
}

func TestRunLaunchError(t *testing.T) {
	var out bytes.Buffer
	inv := newTestInvoker(t, &out)

	result := inv.Run(context.Background(), types.Command{
		Args:        []string{"/definitely/not/a/real/binary"},
		Description: "unlaunchable command",
	})

	assert.False(t, result.Completed)
	assert.False(t, result.Success())
	assert.Error(t, result.LaunchErr)
	assert.Contains(t, out.String(), "Could not launch")
}

func TestRunEmptyCommand(t *testing.T) {
	var out bytes.Buffer
	inv := newTestInvoker(t, &out)

	result := inv.Run(context.Background(), types.Command{})
	assert.False(t, result.Completed)
	assert.Error(t, result.LaunchErr)
}

func TestRunStreamsChildOutput(t *testing.T) {
	var out bytes.Buffer
	inv := newTestInvoker(t, &out)

	result := inv.Run(context.Background(), types.Command{
		Args:        []string{"sh", "-c", "echo streamed-line"},
		Description: "echo command",
	})

	require.True(t, result.Success())
	assert.Contains(t, out.String(), "streamed-line")
}

func TestRunCapturedOutput(t *testing.T) {
	var out bytes.Buffer
	inv := newTestInvoker(t, &out)

	captured := inv.RunCaptured(context.Background(), types.Command{
		Args:        []string{"sh", "-c", "echo captured-line; exit 1"},
		Description: "captured command",
	}, 10*time.Second)

	assert.True(t, captured.Completed)
	assert.False(t, captured.Success())
	assert.Equal(t, 1, captured.ExitCode)
	assert.False(t, captured.TimedOut)
	assert.Contains(t, captured.Output, "captured-line")
	// Captured mode must not leak child output onto the invoker streams.
	assert.NotContains(t, out.String(), "captured-line")
}

func TestRunCapturedTimeout(t *testing.T) {
	var out bytes.Buffer
	inv := newTestInvoker(t, &out)

	start := time.Now()
	captured := inv.RunCaptured(context.Background(), types.Command{
		Args:        []string{"sh", "-c", "sleep 5"},
		Description: "slow command",
	}, 100*time.Millisecond)

	assert.True(t, captured.TimedOut)
	assert.False(t, captured.Success())
	assert.Less(t, time.Since(start), 5*time.Second, "timeout must kill the child")
}

func TestRunCapturedStripsANSI(t *testing.T) {
	var out bytes.Buffer
	inv := newTestInvoker(t, &out)

	captured := inv.RunCaptured(context.Background(), types.Command{
		Args:        []string{"sh", "-c", `printf '\033[31mred\033[0m\n'`},
		Description: "colored command",
	}, 10*time.Second)

	require.True(t, captured.Success())
	assert.Equal(t, "red", captured.Output)
}
