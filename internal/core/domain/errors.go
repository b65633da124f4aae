package domain

import "go.trai.ch/zerr"

var (
	// ErrWorkspaceNotFound is returned when no workspace marker is found walking up from the start directory.
	ErrWorkspaceNotFound = zerr.New("workspace not found")

	// ErrManifestParse is reported when a package manifest cannot be read or decoded.
	// It is a warning: the package is excluded and loading continues.
	ErrManifestParse = zerr.New("failed to parse manifest")

	// ErrManifestInvalid is reported when a manifest decodes but has an unusable shape.
	ErrManifestInvalid = zerr.New("invalid manifest")

	// ErrCycleDetected is returned when the workspace dependency graph contains a cycle.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrPackageNotFound is returned when a requested package, or a dependency edge target, does not exist.
	ErrPackageNotFound = zerr.New("package not found")

	// ErrActivePackageNotFound is returned when a scoped command runs outside every package directory.
	ErrActivePackageNotFound = zerr.New("no active package for current directory")

	// ErrDuplicatePackageName is returned when two manifests declare the same package name.
	ErrDuplicatePackageName = zerr.New("duplicate package name")

	// ErrCacheRestore is returned when a cache entry vanished or is unreadable between check and copy.
	ErrCacheRestore = zerr.New("failed to restore cache entry")

	// ErrCacheSave is returned when a package output could not be stored in the cache.
	ErrCacheSave = zerr.New("failed to save cache entry")

	// ErrCacheClean is returned when the cache directory could not be removed.
	ErrCacheClean = zerr.New("failed to clean cache")

	// ErrBuildScriptFailed is returned when a package build script exits with a non-zero status.
	ErrBuildScriptFailed = zerr.New("build script failed")

	// ErrMissingDependencyHash is returned when a package is hashed before one of its dependencies.
	ErrMissingDependencyHash = zerr.New("missing dependency hash")

	// ErrInvalidPackageManager is returned for package manager names other than npm, pnpm, yarn or bun.
	ErrInvalidPackageManager = zerr.New("invalid package manager")

	// ErrInvalidSettings is returned when the workspace settings file cannot be decoded.
	ErrInvalidSettings = zerr.New("invalid workspace settings")

	// ErrInvalidLogFormat is returned for --log-format values other than auto, pretty or json.
	ErrInvalidLogFormat = zerr.New("invalid log format")

	// ErrInvalidPackageName is returned for names that are not "name" or "@scope/name".
	ErrInvalidPackageName = zerr.New("invalid package name")

	// ErrNoCommand is returned when a command has no arguments.
	ErrNoCommand = zerr.New("no command given")
)
