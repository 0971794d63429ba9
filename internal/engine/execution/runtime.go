package execution

import (
	"context"
	"time"

	"go.trai.ch/dbbm/internal/core/ports"
)

// Runtime carries the collaborators shared by every node of a pipeline.
type Runtime struct {
	Databases     []string
	Cache         ports.CacheManager
	Resume        ports.ResumeStore
	Logger        ports.Logger
	Tracer        ports.Tracer
	Restorer      *Restorer
	MinDeployTime time.Duration
	DryRun        bool

	// Now defaults to time.Now.
	Now func() time.Time
}

func (rt *Runtime) now() time.Time {
	if rt.Now != nil {
		return rt.Now()
	}
	return time.Now()
}

func (rt *Runtime) tracer() ports.Tracer {
	if rt.Tracer != nil {
		return rt.Tracer
	}
	return nopTracer{}
}

type nopTracer struct{}

func (nopTracer) Start(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
	return ctx, nopSpan{}
}

type nopSpan struct{}

func (nopSpan) End()                     {}
func (nopSpan) RecordError(error)        {}
func (nopSpan) SetAttribute(string, any) {}
