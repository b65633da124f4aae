package app

import (
	"path/filepath"

	"go.trai.ch/monorun/internal/core/domain"
	"go.trai.ch/zerr"
)

// Scope selects the packages a build command processes.
type Scope string

const (
	// ScopeDeps builds the dependencies of the target, excluding the target.
	ScopeDeps Scope = "deps"
	// ScopeBuild builds the target and its dependencies.
	ScopeBuild Scope = "build"
	// ScopeAll builds every package of the workspace.
	ScopeAll Scope = "all"
)

// plan returns the ordered package list of scope. Without explicit packages the
// target is the package containing dir. Multiple targets are merged into one
// list that follows the overall order.
func plan(graph *domain.Graph, scope Scope, packages []string, dir string) ([]string, error) {
	if scope == ScopeAll {
		return graph.OverallBuildOrder(), nil
	}

	targets := packages
	if len(targets) == 0 {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to resolve directory"), "dir", dir)
		}
		pkg, ok := graph.FindActivePackage(abs)
		if !ok {
			return nil, zerr.With(domain.ErrActivePackageNotFound, "dir", abs)
		}
		targets = []string{pkg.Name}
	}

	include := make(map[string]bool)
	for _, target := range targets {
		var (
			order []string
			err   error
		)
		switch scope {
		case ScopeDeps:
			order, err = graph.DependenciesBuildOrder(target)
		default:
			order, err = graph.BuildOrder(target)
		}
		if err != nil {
			return nil, err
		}
		for _, name := range order {
			include[name] = true
		}
	}

	merged := make([]string, 0, len(include))
	for _, name := range graph.OverallBuildOrder() {
		if include[name] {
			merged = append(merged, name)
		}
	}
	return merged, nil
}
