package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/dbbm/internal/adapters/cache"     //nolint:depguard // Wired in app layer
	"go.trai.ch/dbbm/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/dbbm/internal/adapters/detector"  //nolint:depguard // Wired in app layer
	"go.trai.ch/dbbm/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/dbbm/internal/adapters/linear"    //nolint:depguard // Wired in app layer
	"go.trai.ch/dbbm/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/dbbm/internal/adapters/sqlcmd"    //nolint:depguard // Wired in app layer
	"go.trai.ch/dbbm/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/dbbm/internal/core/ports"
	"go.trai.ch/dbbm/internal/engine/planner"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains the initialized application components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			config.SettingsNodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
			linear.NodeID,
			fs.ListerNodeID,
			fs.HasherNodeID,
			planner.NodeID,
			cache.NodeID,
			sqlcmd.NodeID,
			detector.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			application, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: application, Logger: log}, nil
		},
	})
}

//nolint:cyclop // one lookup per dependency
func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	settings, err := graft.Dep[ports.SettingsLoader](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	renderer, err := graft.Dep[ports.Renderer](ctx)
	if err != nil {
		return nil, err
	}

	files, err := graft.Dep[ports.FileLister](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[ports.FileHasher](ctx)
	if err != nil {
		return nil, err
	}

	plan, err := graft.Dep[*planner.Planner](ctx)
	if err != nil {
		return nil, err
	}

	caches, err := graft.Dep[*cache.Factory](ctx)
	if err != nil {
		return nil, err
	}

	backends, err := graft.Dep[sqlcmd.Factory](ctx)
	if err != nil {
		return nil, err
	}

	terminal, err := graft.Dep[*detector.Terminal](ctx)
	if err != nil {
		return nil, err
	}

	return New(Dependencies{
		ConfigLoader:   loader,
		SettingsLoader: settings,
		Logger:         log,
		Tracer:         tracer,
		Renderer:       renderer,
		Files:          files,
		Hasher:         hasher,
		Planner:        plan,
		Caches:         caches,
		Backends:       backends,
		Prompter:       terminal,
	}), nil
}
