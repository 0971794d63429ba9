// Package execution evaluates deploy pipelines.
//
// A pipeline is a tree of Nodes. Calculate walks it without side effects to
// find the resulting state hashes and rewrites the tree around resume points
// and cache hits. Run then performs the remaining steps in order.
package execution

import (
	"context"

	"go.trai.ch/dbbm/internal/core/domain"
)

// Transform is a single pipeline step.
type Transform interface {
	// Name identifies the step in spans and timing output.
	Name() string
	// Simulate returns the state the step would produce from hash.
	// It may read files but must not change the database or the file system.
	Simulate(ctx context.Context, hash domain.StateHash) (domain.StateHash, error)
	// Run performs the step and returns the same hash Simulate would.
	Run(ctx context.Context, hash domain.StateHash) (domain.StateHash, error)
	// Requirements reports unmet preconditions of the step to sink.
	Requirements(sink *RequirementSink)
}
