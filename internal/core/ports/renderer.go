package ports

import "time"

// Renderer presents build progress. It is driven by span events.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// OnPlanEmit is called once with the packages in execution order.
	OnPlanEmit(packages []string)

	// OnTaskStart is called when a span begins.
	OnTaskStart(spanID, parentID, name string, startTime time.Time)

	// OnTaskLog is called with raw output of a running span.
	OnTaskLog(spanID string, data []byte)

	// OnTaskComplete is called when a span ends. status is the cache outcome, if any.
	OnTaskComplete(spanID string, endTime time.Time, status string, err error)

	// Flush writes any buffered output.
	Flush() error
}
