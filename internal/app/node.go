package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/monorun/internal/adapters/cas"    //nolint:depguard // Wired in app layer
	"go.trai.ch/monorun/internal/adapters/config" //nolint:depguard // Wired in app layer
	"go.trai.ch/monorun/internal/adapters/fs"     //nolint:depguard // Wired in app layer
	"go.trai.ch/monorun/internal/adapters/linear" //nolint:depguard // Wired in app layer
	"go.trai.ch/monorun/internal/adapters/logger" //nolint:depguard // Wired in app layer
	"go.trai.ch/monorun/internal/adapters/shell"  //nolint:depguard // Wired in app layer
	"go.trai.ch/monorun/internal/core/ports"
	"go.trai.ch/monorun/internal/engine/scheduler"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components are the initialized pieces main needs.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.WorkspaceNodeID,
			config.LoaderNodeID,
			scheduler.NodeID,
			fs.HasherNodeID,
			cas.NodeID,
			shell.NodeID,
			linear.NodeID,
			logger.ConcreteNodeID,
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
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	workspace, err := graft.Dep[ports.WorkspaceResolver](ctx)
	if err != nil {
		return nil, err
	}

	loader, err := graft.Dep[ports.PackageLoader](ctx)
	if err != nil {
		return nil, err
	}

	sched, err := graft.Dep[*scheduler.Scheduler](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.CacheStore](ctx)
	if err != nil {
		return nil, err
	}

	executor, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}

	renderer, err := graft.Dep[ports.Renderer](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[*logger.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(workspace, loader, sched, hasher, store, executor, renderer, log, log), nil
}
