package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide logger. JSON output is for deployed
// gateways; text is the local default. Every record carries the service name
// so console lines are filterable next to the upstream's logs.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	var handler slog.Handler
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler).With(slog.String("service", "console"))
}
