// Package trace provides the structured trace level shared by the simulated
// components.
package trace

import (
	"context"
	"log/slog"
)

// LevelTrace sits between info and warn so that per-cycle traces can be
// selected by a handler without enabling debug output.
const LevelTrace slog.Level = slog.LevelInfo + 1

// Trace logs a per-cycle or per-command event at LevelTrace on the default
// logger.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

