package domain

import (
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Package is a single workspace member loaded from its manifest.
type Package struct {
	// Dir is the absolute directory holding the manifest.
	Dir string

	// Name is the manifest name and the identity of the package in the graph.
	Name string

	// BuildScript is the manifest "build" script. Empty means nothing to build.
	BuildScript string

	// Dependencies are the sorted names of workspace-internal dependencies.
	Dependencies []string

	// Cache controls what is hashed and which directory is cached.
	Cache CacheConfig
}

// HasBuildScript reports whether the package declares a build script.
func (p *Package) HasBuildScript() bool {
	return p.BuildScript != ""
}

// OutPath returns the absolute path of the package output directory.
func (p *Package) OutPath() string {
	return filepath.Join(p.Dir, filepath.FromSlash(p.Cache.OutDir))
}

// DependsOn reports whether name is a direct dependency of the package.
func (p *Package) DependsOn(name string) bool {
	_, found := slices.BinarySearch(p.Dependencies, name)
	return found
}

// CacheConfig is the per-package cache configuration.
type CacheConfig struct {
	Enabled bool
	OutDir  string
	Include []string
	Exclude []string
}

// DefaultOutDir is the output directory cached when a manifest does not override it.
const DefaultOutDir = "dist"

// DefaultInclude returns the include globs used when a manifest does not override them.
func DefaultInclude() []string {
	return []string{"src/**/*"}
}

// DefaultExclude returns the denylist of test and output paths never hashed.
func DefaultExclude() []string {
	return []string{
		"**/node_modules/**",
		"**/dist/**",
		"**/.cache/**",
		"**/coverage/**",
		"**/__tests__/**",
		"**/*.test.*",
		"**/*.spec.*",
	}
}

// DefaultCacheConfig returns the cache configuration applied to every package before overrides.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: true,
		OutDir:  DefaultOutDir,
		Include: DefaultInclude(),
		Exclude: DefaultExclude(),
	}
}

// Clone returns a deep copy so callers can override fields independently.
func (c CacheConfig) Clone() CacheConfig {
	c.Include = slices.Clone(c.Include)
	c.Exclude = slices.Clone(c.Exclude)
	return c
}

// ValidatePackageName accepts "name" and "@scope/name". The name is also a cache
// path, so empty, "." and ".." segments, backslashes and leading slashes are rejected.
func ValidatePackageName(name string) error {
	scope, base, scoped := strings.Cut(name, "/")
	if !scoped {
		base = name
	}

	switch {
	case strings.ContainsAny(name, "\\\x00"),
		scoped && (!strings.HasPrefix(scope, "@") || !validSegment(scope[1:])),
		!scoped && strings.HasPrefix(base, "@"),
		!validSegment(base):
		return zerr.With(ErrInvalidPackageName, "name", name)
	}
	return nil
}

func validSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.Contains(s, "/")
}
