package ports

import (
	"context"

	"go.trai.ch/monorun/internal/core/domain"
)

// WorkspaceResolver locates the monorepo that contains a directory.
//
//go:generate mockgen -source=workspace.go -destination=mocks/mock_workspace.go -package=mocks
type WorkspaceResolver interface {
	// Resolve walks up from startDir until a workspace marker is found.
	// It returns domain.ErrWorkspaceNotFound when the filesystem root is reached first.
	Resolve(ctx context.Context, startDir string) (*domain.Monorepo, error)
}

// PackageLoader expands the workspace globs and loads every member manifest.
type PackageLoader interface {
	// Load returns the valid packages of the workspace, sorted by name.
	// Unreadable or nameless manifests are skipped with a warning.
	Load(ctx context.Context, repo *domain.Monorepo) ([]domain.Package, error)
}
