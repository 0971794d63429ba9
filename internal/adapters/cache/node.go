package cache

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/dbbm/internal/adapters/logger" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/dbbm/internal/core/domain"
	"go.trai.ch/dbbm/internal/core/ports"
)

// NodeID is the unique identifier for the cache factory Graft node.
const NodeID graft.ID = "adapter.cache"

// Factory opens cache managers once user settings are known.
type Factory struct {
	logger ports.Logger
}

// NewFactory creates a Factory logging through logger.
func NewFactory(logger ports.Logger) *Factory {
	return &Factory{logger: logger}
}

// Open returns the manager for settings, or Null when caching is disabled.
func (f *Factory) Open(settings domain.CacheSettings, backend ports.SQLBackend) ports.CacheManager {
	if settings.Disabled {
		return Null{}
	}
	return NewManager(settings.Root, settings.MaxSize, backend, f.logger)
}

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*Factory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(log), nil
		},
	})
}
