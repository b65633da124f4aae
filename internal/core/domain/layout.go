package domain

import (
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
)

const (
	// CacheDirName is the workspace-relative directory holding cached build outputs.
	CacheDirName = ".cache"

	// ManifestFileName is the per-package manifest file.
	ManifestFileName = "package.json"

	// PnpmWorkspaceFileName declares the package globs of a pnpm workspace.
	PnpmWorkspaceFileName = "pnpm-workspace.yaml"

	// SettingsFileName is the optional workspace-level settings file.
	SettingsFileName = "monorun.toml"

	// ToolNamespace is the manifest key holding per-package cache configuration.
	ToolNamespace = "monorun"

	// BuildScriptName is the manifest script run to build a package.
	BuildScriptName = "build"

	// WorkspaceProtocol marks a dependency specifier as workspace-internal.
	WorkspaceProtocol = "workspace:"

	// DirPerm is the default permission for directories created by the cache (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files created by the cache (rw-r--r--).
	FilePerm = 0o644
)

// CachePath returns the cache directory of a workspace root.
func CachePath(root string) string {
	return filepath.Join(root, CacheDirName)
}

// CacheEntryPath returns the directory of one cache entry: <root>/.cache/<name>/<hash>.
// Names and hashes that would leave the package directory of the cache are rejected.
func CacheEntryPath(root, name, hash string) (string, error) {
	if err := ValidatePackageName(name); err != nil {
		return "", err
	}
	if hash == "" || hash == "." || hash == ".." || strings.ContainsAny(hash, "/\\") {
		return "", zerr.With(zerr.New("invalid cache hash"), "hash", hash)
	}
	return filepath.Join(root, CacheDirName, filepath.FromSlash(name), hash), nil
}
