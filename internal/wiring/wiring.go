// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/monorun/internal/adapters/cas"
	_ "go.trai.ch/monorun/internal/adapters/config"
	_ "go.trai.ch/monorun/internal/adapters/fs"
	_ "go.trai.ch/monorun/internal/adapters/linear"
	_ "go.trai.ch/monorun/internal/adapters/logger"
	_ "go.trai.ch/monorun/internal/adapters/manifest"
	_ "go.trai.ch/monorun/internal/adapters/shell"
	// Register app and engine nodes.
	_ "go.trai.ch/monorun/internal/app"
	_ "go.trai.ch/monorun/internal/engine/scheduler"
)
