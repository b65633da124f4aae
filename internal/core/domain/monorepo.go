package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// PackageManagerName identifies the tool that owns a workspace.
type PackageManagerName string

// Supported package managers.
const (
	NPM  PackageManagerName = "npm"
	PNPM PackageManagerName = "pnpm"
	Yarn PackageManagerName = "yarn"
	Bun  PackageManagerName = "bun"
)

// FallbackPackageManager is used when a workspace has no recognizable lockfile.
const FallbackPackageManager = NPM

// PackageManager is the package manager of a workspace and the command prefix used to run scripts.
type PackageManager struct {
	Name       PackageManagerName
	RunCommand []string
}

// NewPackageManager returns the package manager for name with its "<name> run" prefix.
func NewPackageManager(name PackageManagerName) PackageManager {
	return PackageManager{
		Name:       name,
		RunCommand: []string{string(name), "run"},
	}
}

// ParsePackageManager validates a package manager name from user configuration.
func ParsePackageManager(name string) (PackageManager, error) {
	switch n := PackageManagerName(name); n {
	case NPM, PNPM, Yarn, Bun:
		return NewPackageManager(n), nil
	default:
		return PackageManager{}, zerr.With(ErrInvalidPackageManager, "name", name)
	}
}

// ScriptCommand returns the argv that runs script through the package manager.
func (pm PackageManager) ScriptCommand(script string) []string {
	return append(slices.Clone(pm.RunCommand), script)
}

// Monorepo is the resolved workspace: its root, owning package manager, and member globs.
type Monorepo struct {
	Root           string
	PackageManager PackageManager
	PackageGlobs   []string

	// Settings carries workspace-wide defaults from the optional settings file.
	Settings Settings
}

// Settings are workspace-level overrides read from monorun.toml.
type Settings struct {
	// Concurrency is the default number of packages built at once. Zero means unset.
	Concurrency int

	// Cache is the base cache configuration applied before per-package overrides.
	Cache CacheConfig
}

// DefaultSettings returns settings with the built-in cache defaults.
func DefaultSettings() Settings {
	return Settings{Cache: DefaultCacheConfig()}
}
