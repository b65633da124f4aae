// Package config resolves the workspace and loads its package manifests.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.trai.ch/monorun/internal/core/domain"
	"go.trai.ch/monorun/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.WorkspaceResolver = (*WorkspaceResolver)(nil)

// lockfiles maps lockfile names to the package manager that writes them, in detection order.
var lockfiles = []struct {
	file    string
	manager domain.PackageManagerName
}{
	{file: "pnpm-lock.yaml", manager: domain.PNPM},
	{file: "yarn.lock", manager: domain.Yarn},
	{file: "bun.lockb", manager: domain.Bun},
	{file: "bun.lock", manager: domain.Bun},
	{file: "package-lock.json", manager: domain.NPM},
}

// WorkspaceResolver implements ports.WorkspaceResolver for pnpm and package.json workspaces.
type WorkspaceResolver struct {
	Logger ports.Logger
	Reader ports.ManifestReader
}

// NewWorkspaceResolver creates a new WorkspaceResolver.
func NewWorkspaceResolver(logger ports.Logger, reader ports.ManifestReader) *WorkspaceResolver {
	return &WorkspaceResolver{Logger: logger, Reader: reader}
}

type pnpmWorkspace struct {
	Packages []string `yaml:"packages"`
}

// Resolve walks up from startDir to the first directory holding a workspace marker.
func (r *WorkspaceResolver) Resolve(ctx context.Context, startDir string) (*domain.Monorepo, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve start directory"), "start", startDir)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		repo, ok := r.match(dir)
		if ok {
			if err := r.applySettings(repo); err != nil {
				return nil, err
			}
			r.Logger.Debug(fmt.Sprintf("resolved %s workspace at %s", repo.PackageManager.Name, repo.Root))
			return repo, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, zerr.With(domain.ErrWorkspaceNotFound, "start", startDir)
		}
		dir = parent
	}
}

// match checks a single directory. A malformed marker makes the directory a non-match.
func (r *WorkspaceResolver) match(dir string) (*domain.Monorepo, bool) {
	pnpmPath := filepath.Join(dir, domain.PnpmWorkspaceFileName)
	if _, err := os.Stat(pnpmPath); err == nil {
		globs, err := readPnpmWorkspace(pnpmPath)
		if err != nil {
			r.Logger.Warn(fmt.Sprintf("ignoring malformed %s: %v", pnpmPath, err))
			return nil, false
		}
		return &domain.Monorepo{
			Root:           dir,
			PackageManager: domain.NewPackageManager(domain.PNPM),
			PackageGlobs:   globs,
			Settings:       domain.DefaultSettings(),
		}, true
	}

	manifestPath := filepath.Join(dir, domain.ManifestFileName)
	if _, err := os.Stat(manifestPath); err != nil {
		return nil, false
	}

	raw, err := r.Reader.Read(manifestPath)
	if err != nil {
		r.Logger.Warn(fmt.Sprintf("ignoring unreadable %s: %v", manifestPath, err))
		return nil, false
	}

	field, ok := raw["workspaces"]
	if !ok {
		return nil, false
	}

	globs, err := workspaceGlobs(field)
	if err != nil {
		r.Logger.Warn(fmt.Sprintf("ignoring malformed workspaces field in %s: %v", manifestPath, err))
		return nil, false
	}

	return &domain.Monorepo{
		Root:           dir,
		PackageManager: domain.NewPackageManager(DetectPackageManager(dir)),
		PackageGlobs:   globs,
		Settings:       domain.DefaultSettings(),
	}, true
}

func readPnpmWorkspace(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is a fixed marker name below a searched directory
	if err != nil {
		return nil, err
	}

	var ws pnpmWorkspace
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return nil, err
	}
	return ws.Packages, nil
}

// workspaceGlobs accepts both `"workspaces": [...]` and `"workspaces": {"packages": [...]}`.
func workspaceGlobs(field any) ([]string, error) {
	if obj, ok := field.(map[string]any); ok {
		packages, ok := obj["packages"]
		if !ok {
			return nil, zerr.New("workspaces object has no packages list")
		}
		field = packages
	}

	globs, ok := stringList(field)
	if !ok {
		return nil, zerr.New("workspaces must be a list of strings")
	}
	return globs, nil
}

// DetectPackageManager inspects the lockfiles in dir, falling back to npm.
func DetectPackageManager(dir string) domain.PackageManagerName {
	for _, lf := range lockfiles {
		if _, err := os.Stat(filepath.Join(dir, lf.file)); err == nil {
			return lf.manager
		}
	}
	return domain.FallbackPackageManager
}

// stringList converts a decoded JSON array into strings.
func stringList(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
