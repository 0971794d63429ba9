package execution_test

import (
	"context"
	"fmt"
	"sync"

	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/engine/execution"
	"go.trai.ch/dbbm/internal/engine/statehash"
)

// step is a transform whose state is its name chained onto the input.
type step struct {
	name    string
	runErr  error
	journal *journal
	missing []string
}

func (s *step) Name() string { return s.name }

func (s *step) Simulate(_ context.Context, hash domain.StateHash) (domain.StateHash, error) {
	return statehash.Strings(hash, s.name), nil
}

func (s *step) Run(ctx context.Context, hash domain.StateHash) (domain.StateHash, error) {
	if s.journal != nil {
		s.journal.add(fmt.Sprintf("%s@%d", s.name, execution.Depth(ctx)))
	}
	if s.runErr != nil {
		return hash, s.runErr
	}
	return s.Simulate(ctx, hash)
}

func (s *step) Requirements(sink *execution.RequirementSink) {
	for _, m := range s.missing {
		sink.Fail(s.name, "%s", m)
	}
}

type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(e string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
}

// recorder is a ports.Logger keeping every line.
type recorder struct {
	lines []string
}

func (r *recorder) Info(msg string) { r.lines = append(r.lines, msg) }
func (r *recorder) Warn(msg string) { r.lines = append(r.lines, "WARN "+msg) }
func (r *recorder) Error(err error) { r.lines = append(r.lines, "ERROR "+err.Error()) }

// chain returns the states reached by running names in order from Empty.
func chain(names ...string) []domain.StateHash {
	out := make([]domain.StateHash, 0, len(names))
	h := domain.EmptyStateHash
	for _, n := range names {
		h = statehash.Strings(h, n)
		out = append(out, h)
	}
	return out
}

// labels flattens a tree into its labels and leaf names, depth first.
func labels(n *execution.Node) []string {
	if n == nil {
		return nil
	}
	if n.IsLeaf() {
		return []string{n.Transform().Name()}
	}
	pre, post := n.Labels()
	out := []string{pre}
	for _, c := range n.Children() {
		out = append(out, labels(c)...)
	}
	return append(out, post)
}
