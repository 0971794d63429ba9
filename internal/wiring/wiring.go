// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/dbbm/internal/adapters/cache"
	_ "go.trai.ch/dbbm/internal/adapters/config"
	_ "go.trai.ch/dbbm/internal/adapters/detector"
	_ "go.trai.ch/dbbm/internal/adapters/fs"
	_ "go.trai.ch/dbbm/internal/adapters/linear"
	_ "go.trai.ch/dbbm/internal/adapters/logger"
	_ "go.trai.ch/dbbm/internal/adapters/sqlcmd"
	_ "go.trai.ch/dbbm/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/dbbm/internal/app"
	_ "go.trai.ch/dbbm/internal/engine/planner"
)
