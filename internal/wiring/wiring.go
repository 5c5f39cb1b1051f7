// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/facades/internal/adapters/analysis"
	_ "go.trai.ch/facades/internal/adapters/config"
	_ "go.trai.ch/facades/internal/adapters/logger"
	_ "go.trai.ch/facades/internal/adapters/telemetry"
	_ "go.trai.ch/facades/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/facades/internal/app"
)
