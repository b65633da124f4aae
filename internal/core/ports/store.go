package ports

import "go.trai.ch/monorun/internal/core/domain"

// CacheStore stores package outputs under <root>/.cache/<name>/<hash>.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type CacheStore interface {
	// IsCached reports whether a non-empty entry exists for the package and hash.
	IsCached(root, name, hash string) bool

	// Restore replaces the package output directory with the cached entry.
	Restore(root string, pkg *domain.Package, hash string) error

	// Save copies the package output directory into a new entry.
	Save(root string, pkg *domain.Package, hash string) error

	// Clean removes the whole cache directory of the workspace.
	Clean(root string) error

	// Prune removes every entry whose hash differs from keep[name]. It returns the number removed.
	Prune(root string, keep map[string]string) (int, error)
}
