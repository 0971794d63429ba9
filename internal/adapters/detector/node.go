package detector

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the terminal detector Graft node.
const NodeID graft.ID = "adapter.detector"

func init() {
	graft.Register(graft.Node[*Terminal]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Terminal, error) {
			return New(), nil
		},
	})
}
