package planner

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/dbbm/internal/adapters/fs" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/dbbm/internal/core/ports"
)

// NodeID is the unique identifier for the planner Graft node.
const NodeID graft.ID = "engine.planner"

func init() {
	graft.Register(graft.Node[*Planner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.ListerNodeID},
		Run: func(ctx context.Context) (*Planner, error) {
			files, err := graft.Dep[ports.FileLister](ctx)
			if err != nil {
				return nil, err
			}
			return New(files), nil
		},
	})
}
