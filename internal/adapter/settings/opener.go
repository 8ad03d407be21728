// Package settings handles "open system settings" requests on a headless host.
package settings

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// LogOpener records settings requests. A headless host has no settings
// screen, so the request is logged for an operator and counted.
type LogOpener struct {
	logger   *slog.Logger
	requests atomic.Int64
}

// NewLogOpener creates a LogOpener that logs through logger.
func NewLogOpener(logger *slog.Logger) *LogOpener {
	return &LogOpener{logger: logger}
}

// OpenSettings logs the request and never fails.
func (o *LogOpener) OpenSettings(_ context.Context) error {
	n := o.requests.Add(1)
	o.logger.Info("user asked to open location settings", "requests", n)
	return nil
}

// Requests returns how many times settings were requested.
func (o *LogOpener) Requests() int64 {
	return o.requests.Load()
}
