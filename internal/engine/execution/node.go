package execution

import (
	"context"

	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/core/ports"
	"go.trai.ch/zerr"
)

// Labels used for the synthetic node that replaces a step found in the cache.
const (
	CacheRestoreBegin = "Restoring state from cache..."
	CacheRestoreEnd   = "Cache restored"
)

// Node is either a leaf holding one Transform or an aggregator of ordered children.
// Nodes are immutable; Calculate returns a new tree instead of editing this one.
type Node struct {
	pre, post string
	transform Transform
	children  []*Node
}

// NewLeaf wraps a single step.
func NewLeaf(t Transform) *Node {
	return &Node{transform: t}
}

// NewAggregator groups children, logging pre before and post after running them.
// Empty labels are not logged.
func NewAggregator(pre, post string, children ...*Node) *Node {
	kept := make([]*Node, 0, len(children))
	for _, c := range children {
		if c != nil {
			kept = append(kept, c)
		}
	}
	return &Node{pre: pre, post: post, children: kept}
}

// IsLeaf reports whether the node holds a transform.
func (n *Node) IsLeaf() bool {
	return n.transform != nil
}

// Transform returns the step of a leaf, nil for aggregators.
func (n *Node) Transform() Transform {
	return n.transform
}

// Children returns a copy of the aggregator's children.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// Labels returns the begin and end labels of an aggregator.
func (n *Node) Labels() (pre, post string) {
	return n.pre, n.post
}

// Leaves returns the transforms of the tree in execution order.
func (n *Node) Leaves() []Transform {
	if n.IsLeaf() {
		return []Transform{n.transform}
	}
	var out []Transform
	for _, c := range n.children {
		out = append(out, c.Leaves()...)
	}
	return out
}

// Requirements collects the preconditions of every step in the tree.
func (n *Node) Requirements(sink *RequirementSink) {
	for _, t := range n.Leaves() {
		t.Requirements(sink)
	}
}

// CalcResult is the outcome of Calculate.
type CalcResult struct {
	// Node is the rewritten tree, nil when every step was elided.
	Node *Node
	// Hash is the state after the last step.
	Hash domain.StateHash
	// Entry is the state the first remaining step starts from.
	Entry domain.StateHash
	// Changed reports whether the tree was rewritten.
	Changed bool
	// Anchor is the state restored from the cache, if any.
	Anchor *domain.StateHash
}

// Calculate simulates the tree starting at hash.
//
// A step whose result equals resume is elided together with everything before it.
// A step whose result is cached for every database is replaced by a restore of
// those backups, which also drops everything before it.
func (n *Node) Calculate(ctx context.Context, rt *Runtime, hash domain.StateHash, resume *domain.StateHash) (CalcResult, error) {
	if n == nil {
		return CalcResult{}, domain.ErrInvalidNode
	}
	if n.IsLeaf() {
		return n.calculateLeaf(ctx, rt, hash, resume)
	}

	res := CalcResult{Hash: hash, Entry: hash}
	kept := make([]*Node, 0, len(n.children))

	for _, c := range n.children {
		r, err := c.Calculate(ctx, rt, res.Hash, resume)
		if err != nil {
			return CalcResult{}, err
		}

		if r.Changed {
			// Everything before the change is subsumed by it.
			res.Changed = true
			res.Anchor = r.Anchor
			kept = kept[:0]
		}
		if r.Node != nil {
			if len(kept) == 0 {
				res.Entry = r.Entry
			}
			kept = append(kept, r.Node)
		}
		res.Hash = r.Hash
	}

	if !res.Changed {
		res.Node = n
		return res, nil
	}
	if len(kept) > 0 {
		res.Node = &Node{pre: n.pre, post: n.post, children: kept}
	} else {
		res.Entry = res.Hash
	}
	return res, nil
}

func (n *Node) calculateLeaf(ctx context.Context, rt *Runtime, hash domain.StateHash, resume *domain.StateHash) (CalcResult, error) {
	next, err := n.transform.Simulate(ctx, hash)
	if err != nil {
		return CalcResult{}, err
	}

	if resume != nil && next == *resume {
		return CalcResult{Hash: next, Entry: next, Changed: true}, nil
	}

	if backups, ok := cachedBackups(rt, next); ok {
		anchor := next
		restore := NewAggregator(CacheRestoreBegin, CacheRestoreEnd,
			NewLeaf(NewCachedRestoreTransform(rt.Restorer, backups, next)))
		return CalcResult{Node: restore, Hash: next, Entry: hash, Changed: true, Anchor: &anchor}, nil
	}

	return CalcResult{Node: n, Hash: next, Entry: hash}, nil
}

func cachedBackups(rt *Runtime, hash domain.StateHash) ([]domain.DatabaseBackupInfo, bool) {
	if rt.Cache == nil || len(rt.Databases) == 0 {
		return nil, false
	}

	backups := make([]domain.DatabaseBackupInfo, 0, len(rt.Databases))
	for _, db := range rt.Databases {
		path, ok := rt.Cache.TryGet(db, hash, false)
		if !ok {
			return nil, false
		}
		backups = append(backups, domain.DatabaseBackupInfo{Name: db, BackupFilePath: path})
	}
	return backups, true
}

// Run executes the tree starting at hash and returns the final state.
// The first error stops the run; completed steps are not rolled back.
func (n *Node) Run(ctx context.Context, rt *Runtime, hash domain.StateHash) (domain.StateHash, error) {
	if n == nil {
		return hash, domain.ErrInvalidNode
	}
	return n.run(ctx, rt, hash, 0, true, true)
}

func (n *Node) run(ctx context.Context, rt *Runtime, hash domain.StateHash, depth int, first, last bool) (domain.StateHash, error) {
	if n.IsLeaf() {
		return n.runLeaf(withDepth(ctx, depth), rt, hash, first, last)
	}

	log := Indent(rt.Logger, depth)
	childDepth := depth
	if n.pre != "" {
		log.Info(n.pre)
		childDepth++
	}

	for i, c := range n.children {
		var err error
		hash, err = c.run(ctx, rt, hash, childDepth, first && i == 0, last && i == len(n.children)-1)
		if err != nil {
			return hash, err
		}
	}

	if n.post != "" {
		log.Info(n.post)
	}
	return hash, nil
}

func (n *Node) runLeaf(ctx context.Context, rt *Runtime, hash domain.StateHash, first, last bool) (domain.StateHash, error) {
	ctx, span := rt.tracer().Start(ctx, n.transform.Name(), ports.WithAttribute("dbbm.dry_run", rt.DryRun))
	defer span.End()

	start := rt.now()
	next, err := n.transform.Run(ctx, hash)
	if err != nil {
		span.RecordError(err)
		return hash, err
	}
	elapsed := rt.now().Sub(start)
	span.SetAttribute("dbbm.hash", next.String())

	if rt.DryRun {
		span.SetAttribute("dbbm.cached", false)
		return next, nil
	}

	if rt.Resume != nil {
		if err := rt.Resume.Save(next); err != nil {
			span.RecordError(err)
			return next, zerr.Wrap(err, domain.ErrResumeWriteFailed.Error())
		}
	}

	cached := !first && !last && elapsed >= rt.MinDeployTime && rt.Cache != nil
	if cached {
		for _, db := range rt.Databases {
			rt.Cache.Add(ctx, db, next)
		}
	}
	span.SetAttribute("dbbm.cached", cached)

	return next, nil
}
