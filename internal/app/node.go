package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/facades/internal/adapters/analysis"  //nolint:depguard // Wired in app layer
	"go.trai.ch/facades/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/facades/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/facades/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/facades/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/facades/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components is the root of the dependency graph handed to the CLI.
type Components struct {
	App          *App
	Logger       ports.Logger
	ConfigLoader ports.ConfigLoader
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			analysis.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
			watcher.WatcherNodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}

			analyzer, err := graft.Dep[ports.Analyzer](ctx)
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

			newWatcher, err := graft.Dep[ports.WatcherFactory](ctx)
			if err != nil {
				return nil, err
			}

			return New(loader, analyzer, log, tracer).WithWatcherFactory(newWatcher), nil
		},
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			config.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:          app,
		Logger:       log,
		ConfigLoader: loader,
	}, nil
}
