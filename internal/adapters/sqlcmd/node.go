package sqlcmd

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/core/ports"
)

// NodeID is the unique identifier for the SQL backend factory Graft node.
const NodeID graft.ID = "adapter.sqlcmd"

// Factory opens backends once user settings are known.
type Factory struct{}

// Open returns a backend for the given client path and connection.
func (Factory) Open(settings *domain.Settings) ports.SQLBackend {
	return New(Options{
		Path:        settings.SQLCmdPath,
		Connection:  settings.Connection,
		Compression: settings.Cache.Compression,
	})
}

func init() {
	graft.Register(graft.Node[Factory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (Factory, error) {
			return Factory{}, nil
		},
	})
}
