package scheduler

import (
	"context"
	"maps"
	"sync"

	"go.trai.ch/monorun/internal/core/domain"
	"go.trai.ch/monorun/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// HashMemo computes package hashes on demand and remembers them for the rest of a run.
// Concurrent requests for the same package share one computation.
type HashMemo struct {
	hasher ports.Hasher
	graph  *domain.Graph

	group  singleflight.Group
	mu     sync.RWMutex
	hashes map[string]string
}

// NewHashMemo creates an empty memo over graph.
func NewHashMemo(hasher ports.Hasher, graph *domain.Graph) *HashMemo {
	return &HashMemo{
		hasher: hasher,
		graph:  graph,
		hashes: make(map[string]string),
	}
}

// Hash returns the hash of name, hashing its dependencies first.
// Failures are not memoized.
func (m *HashMemo) Hash(ctx context.Context, name string) (string, error) {
	if h, ok := m.lookup(name); ok {
		return h, nil
	}

	v, err, _ := m.group.Do(name, func() (any, error) {
		if h, ok := m.lookup(name); ok {
			return h, nil
		}

		pkg, ok := m.graph.Package(name)
		if !ok {
			return "", zerr.With(domain.ErrPackageNotFound, "package", name)
		}

		deps := make(map[string]string, len(pkg.Dependencies))
		for _, dep := range pkg.Dependencies {
			h, err := m.Hash(ctx, dep)
			if err != nil {
				return "", err
			}
			deps[dep] = h
		}

		h, err := m.hasher.HashPackage(ctx, &pkg, deps)
		if err != nil {
			return "", err
		}

		m.mu.Lock()
		m.hashes[name] = h
		m.mu.Unlock()
		return h, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Hashes returns a copy of every hash computed so far.
func (m *HashMemo) Hashes() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.hashes)
}

func (m *HashMemo) lookup(name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.hashes[name]
	return h, ok
}
