// Package linear provides a synchronous, line-oriented step timing renderer.
package linear

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/muesli/termenv"
)

// Renderer implements ports.Renderer by printing one line per finished step.
type Renderer struct {
	out    io.Writer
	output *termenv.Output

	mu       sync.Mutex
	steps    map[string]*stepState // spanID -> step state
	finished int
	total    time.Duration
}

type stepState struct {
	name      string
	startTime time.Time
}

// NewRenderer creates a new Renderer writing to out, or stderr when out is nil.
func NewRenderer(out io.Writer) *Renderer {
	if out == nil {
		out = os.Stderr
	}

	return &Renderer{
		out:    out,
		output: termenv.NewOutput(out, termenv.WithProfile(colorProfile())),
		steps:  make(map[string]*stepState),
	}
}

// colorProfile returns the color profile based on environment.
func colorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.ANSI
}

// OnStepStart records the start of a step.
func (r *Renderer) OnStepStart(spanID, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.steps[spanID] = &stepState{name: name, startTime: startTime}
}

// OnStepComplete prints the duration of a finished step.
func (r *Renderer) OnStepComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	step, ok := r.steps[spanID]
	if !ok {
		return
	}
	delete(r.steps, spanID)

	duration := endTime.Sub(step.startTime).Round(time.Millisecond)
	r.finished++
	r.total += duration

	prefix := r.output.String(fmt.Sprintf("[%s]", step.name)).Faint().String()
	if err != nil {
		symbol := r.output.String("✗").Foreground(termenv.ANSIRed).String()
		_, _ = fmt.Fprintf(r.out, "%s %s failed after %v: %v\n", prefix, symbol, duration, err)
		return
	}

	symbol := r.output.String("✓").Foreground(termenv.ANSIGreen).String()
	_, _ = fmt.Fprintf(r.out, "%s %s completed in %v\n", prefix, symbol, duration)
}

// Flush prints the accumulated step time.
func (r *Renderer) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finished == 0 {
		return nil
	}
	_, err := fmt.Fprintf(r.out, "%d step(s) took %v in total\n", r.finished, r.total)
	r.finished, r.total = 0, 0
	return err
}
