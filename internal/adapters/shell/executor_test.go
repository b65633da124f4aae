package shell_test

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/monorun/internal/adapters/shell"
	"go.trai.ch/monorun/internal/core/domain"
	"go.trai.ch/monorun/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func newExecutor(t *testing.T, opts ...shell.Option) *shell.Executor {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	return shell.NewExecutor(log, opts...)
}

// modes runs each test with and without a pty.
var modes = []struct {
	name string
	pty  bool
}{
	{name: "pty", pty: true},
	{name: "pipes", pty: false},
}

func TestExecutor_Execute_MultiLineOutput(t *testing.T) {
	for _, mode := range modes {
		t.Run(mode.name, func(t *testing.T) {
			cmd := &domain.Command{
				Args: []string{"sh", "-c", "echo line1; echo line2"},
				Dir:  t.TempDir(),
			}

			var stdout bytes.Buffer
			err := newExecutor(t, shell.WithPTY(mode.pty)).Execute(context.Background(), cmd, &stdout, io.Discard)
			require.NoError(t, err)

			assert.Equal(t, "line1\nline2\n", stdout.String())
		})
	}
}

func TestExecutor_Execute_FragmentedOutput(t *testing.T) {
	cmd := &domain.Command{
		Args: []string{"sh", "-c", "printf part1; sleep 0.1; echo part2; printf tail"},
		Dir:  t.TempDir(),
	}

	var stdout bytes.Buffer
	err := newExecutor(t).Execute(context.Background(), cmd, &stdout, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "part1part2\ntail\n", stdout.String())
}

func TestExecutor_Execute_Environment(t *testing.T) {
	t.Setenv("MONORUN_TEST_INHERITED", "from-parent")

	cmd := &domain.Command{
		Args: []string{"sh", "-c", "echo $MONORUN_TEST_INHERITED $MONORUN_ORCHESTRATED"},
		Dir:  t.TempDir(),
		Env:  []string{domain.GuardEnv()},
	}

	var stdout bytes.Buffer
	err := newExecutor(t).Execute(context.Background(), cmd, &stdout, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "from-parent true\n", stdout.String())
}

func TestExecutor_Execute_WorkingDir(t *testing.T) {
	dir := t.TempDir()
	cmd := &domain.Command{Args: []string{"pwd"}, Dir: dir}

	var stdout bytes.Buffer
	err := newExecutor(t, shell.WithPTY(false)).Execute(context.Background(), cmd, &stdout, io.Discard)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), dir)
}

func TestExecutor_Execute_StderrWithPipes(t *testing.T) {
	cmd := &domain.Command{
		Args: []string{"sh", "-c", "echo out; echo err >&2"},
		Dir:  t.TempDir(),
	}

	var stdout, stderr bytes.Buffer
	err := newExecutor(t, shell.WithPTY(false)).Execute(context.Background(), cmd, &stdout, &stderr)
	require.NoError(t, err)

	assert.Equal(t, "out\n", stdout.String())
	assert.Equal(t, "err\n", stderr.String())
}

func TestExecutor_Execute_ExitCode(t *testing.T) {
	for _, mode := range modes {
		t.Run(mode.name, func(t *testing.T) {
			cmd := &domain.Command{Args: []string{"sh", "-c", "exit 3"}, Dir: t.TempDir()}

			err := newExecutor(t, shell.WithPTY(mode.pty)).Execute(context.Background(), cmd, io.Discard, io.Discard)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "command failed")

			zErr, ok := err.(*zerr.Error)
			require.True(t, ok, "expected *zerr.Error, got %T", err)
			assert.Equal(t, 3, zErr.Metadata()["exit_code"])
		})
	}
}

func TestExecutor_Execute_InvalidCommand(t *testing.T) {
	cmd := &domain.Command{Args: []string{"monorun-definitely-not-a-command"}, Dir: t.TempDir()}

	err := newExecutor(t).Execute(context.Background(), cmd, io.Discard, io.Discard)
	require.Error(t, err)

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, -1, zErr.Metadata()["exit_code"])
}

func TestExecutor_Execute_NoCommand(t *testing.T) {
	err := newExecutor(t).Execute(context.Background(), &domain.Command{}, io.Discard, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrNoCommand.Error())
}

func TestExecutor_Execute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	cmd := &domain.Command{Args: []string{"sleep", "10"}, Dir: t.TempDir()}

	start := time.Now()
	err := newExecutor(t).Execute(ctx, cmd, io.Discard, io.Discard)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
