package ports

import (
	"context"

	"go.trai.ch/monorun/internal/core/domain"
)

// InputResolver expands include and exclude globs into concrete files.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type InputResolver interface {
	// ResolveInputs returns the slash-separated paths below dir matched by include
	// and not matched by exclude, sorted lexicographically.
	ResolveInputs(dir string, include, exclude []string) ([]string, error)
}

// Hasher computes the content hash of a package.
type Hasher interface {
	// HashPackage digests the tracked files of pkg and the hashes of its direct dependencies.
	// depHashes must hold a hash for every name in pkg.Dependencies.
	HashPackage(ctx context.Context, pkg *domain.Package, depHashes map[string]string) (string, error)
}
