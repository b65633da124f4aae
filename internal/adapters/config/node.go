package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/monorun/internal/adapters/logger"   //nolint:depguard // Wired in adapter layer
	"go.trai.ch/monorun/internal/adapters/manifest" //nolint:depguard // Wired in adapter layer
	"go.trai.ch/monorun/internal/core/ports"
)

const (
	// WorkspaceNodeID is the unique identifier for the workspace resolver Graft node.
	WorkspaceNodeID graft.ID = "adapter.config.workspace"
	// LoaderNodeID is the unique identifier for the package loader Graft node.
	LoaderNodeID graft.ID = "adapter.config.loader"
)

func init() {
	graft.Register(graft.Node[ports.WorkspaceResolver]{
		ID:        WorkspaceNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, manifest.NodeID},
		Run: func(ctx context.Context) (ports.WorkspaceResolver, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			reader, err := graft.Dep[ports.ManifestReader](ctx)
			if err != nil {
				return nil, err
			}
			return NewWorkspaceResolver(log, reader), nil
		},
	})

	graft.Register(graft.Node[ports.PackageLoader]{
		ID:        LoaderNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, manifest.NodeID},
		Run: func(ctx context.Context) (ports.PackageLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			reader, err := graft.Dep[ports.ManifestReader](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(log, reader), nil
		},
	})
}
