package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/dbbm/internal/core/ports"
)

const (
	// WalkerNodeID is the Graft node for the concrete Walker.
	WalkerNodeID graft.ID = "adapter.fs.walker"
	// ListerNodeID is the Graft node exposing the Walker as a ports.FileLister.
	ListerNodeID graft.ID = "adapter.fs.lister"
	// HasherNodeID is the Graft node for the file hasher.
	HasherNodeID graft.ID = "adapter.fs.hasher"
)

func init() {
	graft.Register(graft.Node[*Walker]{
		ID:        WalkerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Walker, error) {
			return NewWalker(), nil
		},
	})

	graft.Register(graft.Node[ports.FileLister]{
		ID:        ListerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{WalkerNodeID},
		Run: func(ctx context.Context) (ports.FileLister, error) {
			walker, err := graft.Dep[*Walker](ctx)
			if err != nil {
				return nil, err
			}
			return walker, nil
		},
	})

	graft.Register(graft.Node[ports.FileHasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.FileHasher, error) {
			return NewHasher(), nil
		},
	})
}
