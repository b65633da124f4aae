// Package shell provides a pty-backed executor for package build scripts.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/monorun/internal/core/domain"
	"go.trai.ch/monorun/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor using os/exec, inside a pty when one is available.
type Executor struct {
	logger ports.Logger
	usePTY bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithPTY controls whether commands run inside a pseudo terminal. Defaults to true.
func WithPTY(enabled bool) Option {
	return func(e *Executor) {
		e.usePTY = enabled
	}
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger, opts ...Option) *Executor {
	e := &Executor{logger: logger, usePTY: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the command and waits for it to complete.
// Output is forwarded line by line. Under a pty stdout and stderr are merged into stdout.
func (e *Executor) Execute(ctx context.Context, cmd *domain.Command, stdout, stderr io.Writer) error {
	if len(cmd.Args) == 0 {
		return domain.ErrNoCommand
	}

	out := &lineWriter{dst: stdout}
	errOut := &lineWriter{dst: stderr}
	defer func() {
		_ = out.Close()
		_ = errOut.Close()
	}()

	e.logger.Debug("exec " + strings.Join(cmd.Args, " ") + " in " + cmd.Dir)

	var err error
	started := false
	if e.usePTY {
		started, err = e.runPTY(ctx, cmd, out)
		if !started {
			e.logger.Debug("pty start failed, falling back to pipes: " + err.Error())
		}
	}
	if !started {
		err = e.runPipes(ctx, cmd, out, errOut)
	}

	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode)
	}
	return nil
}

// runPTY reports whether the command started; a start failure is retried with pipes.
func (e *Executor) runPTY(ctx context.Context, c *domain.Command, out io.Writer) (bool, error) {
	cmd := command(ctx, c)
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return false, err
	}
	defer ptmx.Close() //nolint:errcheck // Best effort close in defer

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		// Reading a pty whose peer is gone fails with EIO; that is the normal end of output.
		_, _ = io.Copy(out, ptmx)
	}()

	err = cmd.Wait()
	<-ioDone
	return true, err
}

func (e *Executor) runPipes(ctx context.Context, c *domain.Command, out, errOut io.Writer) error {
	cmd := command(ctx, c)
	cmd.Stdout = out
	cmd.Stderr = errOut
	return cmd.Run()
}

func command(ctx context.Context, c *domain.Command) *exec.Cmd {
	env := resolveEnvironment(os.Environ(), c.Env)

	name := c.Args[0]
	executable := name
	if !filepath.IsAbs(name) && !strings.ContainsRune(name, filepath.Separator) {
		if lp, err := lookPath(name, env); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, c.Args[1:]...) //nolint:gosec // Build scripts are user provided
	cmd.Args[0] = name
	cmd.Dir = c.Dir
	cmd.Env = env
	return cmd
}

// lineWriter forwards complete lines to dst and strips the carriage returns a pty adds.
type lineWriter struct {
	dst io.Writer
	buf []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		if err := w.writeLine(w.buf[:i]); err != nil {
			return len(p), err
		}
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// Close flushes a trailing line without newline.
func (w *lineWriter) Close() error {
	if len(w.buf) == 0 {
		return nil
	}
	err := w.writeLine(w.buf)
	w.buf = nil
	return err
}

func (w *lineWriter) writeLine(line []byte) error {
	line = bytes.TrimSuffix(line, []byte{'\r'})
	_, err := w.dst.Write(append(slices.Clip(line), '\n'))
	return err
}

// resolveEnvironment overlays extra KEY=VALUE pairs onto the system environment.
// The result is sorted by key.
func resolveEnvironment(sysEnv, extra []string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(extra))
	for _, entries := range [][]string{sysEnv, extra} {
		for _, entry := range entries {
			if k, v, ok := strings.Cut(entry, "="); ok {
				envMap[k] = v
			}
		}
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// lookPath searches for an executable in the directories named by the PATH entry of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if p, ok := strings.CutPrefix(e, "PATH="); ok {
			path = p
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(path); err == nil {
			return path, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
