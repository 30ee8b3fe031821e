// Package log is a thin wrapper around log/slog, grounded on
// wyf-ACCEPT-eth2030/pkg/log/log.go's Module(name) child-logger pattern.
package log

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger to give call sites a short, consistent surface
// and a per-component Module() child logger.
type Logger struct {
	*slog.Logger
}

var root = Logger{slog.New(slog.NewJSONHandler(os.Stderr, nil))}

// Default returns the package-level root logger.
func Default() Logger { return root }

// Module returns a child logger tagged with "module": name, matching the
// convention every package in this module uses for its own logger.
func (l Logger) Module(name string) Logger {
	return Logger{l.Logger.With("module", name)}
}

func New(name string) Logger { return root.Module(name) }
