// Package linear provides a synchronous, line-buffered renderer for build progress.
package linear

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/monorun/internal/core/domain"
	"go.trai.ch/monorun/internal/core/ports"
	"go.trai.ch/monorun/internal/ui/output"
	"go.trai.ch/monorun/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer implements ports.Renderer with chronological, package-prefixed lines.
// Build output goes to stdout; progress goes to stderr.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu      sync.Mutex
	tasks   map[string]*taskState // spanID -> task state
	buffers map[string]*bytes.Buffer
}

type taskState struct {
	name      string
	startTime time.Time
}

// NewRenderer creates a new Renderer. Nil writers default to os.Stdout and os.Stderr.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Renderer{
		stdout:  stdout,
		stderr:  stderr,
		output:  output.NewWithProfile(stderr, output.ColorProfileANSI),
		tasks:   make(map[string]*taskState),
		buffers: make(map[string]*bytes.Buffer),
	}
}

// OnPlanEmit prints the planned packages.
func (r *Renderer) OnPlanEmit(packages []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(packages) == 0 {
		_, _ = fmt.Fprintln(r.stderr, "Nothing to build")
		return
	}
	_, _ = fmt.Fprintf(r.stderr, "Planning %d package(s): %s\n", len(packages), strings.Join(packages, ", "))
}

// OnTaskStart registers the span so its output can be prefixed.
func (r *Renderer) OnTaskStart(spanID, _ /* parentID */, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[spanID] = &taskState{
		name:      name,
		startTime: startTime,
	}
	r.buffers[spanID] = new(bytes.Buffer)
}

// OnTaskLog buffers output and prints complete lines with the package prefix.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	buf := r.buffers[spanID]
	buf.Write(data)

	for {
		i := bytes.IndexByte(buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		r.printLineLocked(task.name, buf.Next(i+1))
	}
}

// OnTaskComplete flushes the remaining output and prints the outcome.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, status string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	r.flushBufferLocked(spanID)

	icon := style.StatusIcon(status, err != nil)
	duration := endTime.Sub(task.startTime).Round(time.Millisecond)

	var line, color string
	switch {
	case err != nil:
		line = fmt.Sprintf("%s (failed after %v): %v", task.name, duration, err)
		color = string(style.Red)
	case status == string(domain.StatusCached):
		line = task.name + " (cached)"
		color = string(style.Iris)
	case status == string(domain.StatusSkipped):
		line = task.name + " (nothing to build)"
		color = string(style.Slate)
	default:
		line = fmt.Sprintf("%s (built in %v)", task.name, duration)
		color = string(style.Green)
	}

	symbol := r.output.String(icon).Foreground(r.output.Color(color)).String()
	_, _ = fmt.Fprintf(r.stderr, "%s %s\n", symbol, line)

	delete(r.tasks, spanID)
	delete(r.buffers, spanID)
}

// Flush prints any partial lines still buffered.
func (r *Renderer) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for spanID := range r.buffers {
		r.flushBufferLocked(spanID)
	}
	return nil
}

// flushBufferLocked must be called with r.mu held.
func (r *Renderer) flushBufferLocked(spanID string) {
	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	buf := r.buffers[spanID]
	if buf.Len() > 0 {
		r.printLineLocked(task.name, buf.Bytes())
		buf.Reset()
	}
}

// printLineLocked must be called with r.mu held.
func (r *Renderer) printLineLocked(name string, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) == 0 {
		return
	}

	prefix := r.output.String(fmt.Sprintf("[%s]", name)).Faint().String()
	_, _ = fmt.Fprintf(r.stdout, "%s %s\n", prefix, string(line))
}
