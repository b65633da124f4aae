package domain

// BuildStatus is the outcome of processing one package in a run.
type BuildStatus string

const (
	// StatusBuilt means the build script ran and succeeded.
	StatusBuilt BuildStatus = "built"
	// StatusCached means the output directory was restored from the cache.
	StatusCached BuildStatus = "cached"
	// StatusSkipped means the package has no build script.
	StatusSkipped BuildStatus = "skipped"
	// StatusFailed means the build script failed.
	StatusFailed BuildStatus = "failed"
)

// Span attribute keys set on package spans.
const (
	AttrPackage = "package"
	AttrHash    = "hash"
	AttrStatus  = "cache"
	AttrRunID   = "run.id"
	AttrGraph   = "graph.fingerprint"
)
