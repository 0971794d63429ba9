package ports

import (
	"time"
)

// Renderer presents step progress reported by finished spans.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// OnStepStart is called when a step begins execution.
	// spanID: unique identifier for this step execution
	// name: human-readable step name
	// startTime: when the step started
	OnStepStart(spanID, name string, startTime time.Time)

	// OnStepComplete is called when a step finishes execution.
	// err is nil if the step succeeded.
	OnStepComplete(spanID string, endTime time.Time, err error)

	// Flush writes any pending summary output.
	Flush() error
}
