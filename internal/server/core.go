// Package server wires the protocol, store, detect, and dispatch packages
// into a running TCP listener: the process-wide Core shared state, and the
// per-connection session state machine that drives it.
//
// The accept-loop/per-connection-goroutine/options-pattern shape follows
// Atsika-aznet's Listen + options.go; the connection state machine and its
// channel-based writer render Atsika-aznet's mutex-guarded single-writer
// Conn as a single outbound channel, drained by one writer goroutine and
// kept apart from the reader goroutine that decodes frames and mutates state.
package server

import (
	"log/slog"

	"github.com/atsika/speedtrap/internal/detect"
	"github.com/atsika/speedtrap/internal/dispatch"
	"github.com/atsika/speedtrap/internal/logger"
	"github.com/atsika/speedtrap/internal/metrics"
	"github.com/atsika/speedtrap/internal/store"
)

// Core is the process-wide shared state every connection operates on: the
// observation index, the day-suppression table, the dispatcher registry,
// and the ticket router. One Core is created per running server and
// handed to every accepted connection.
type Core struct {
	Store       *store.Store
	Registry    *dispatch.Registry
	Router      *dispatch.Router
	Suppression *detect.Suppression
	Metrics     metrics.Metrics
	Log         *slog.Logger
}

// NewCore builds a Core with fresh, empty shared state.
func NewCore(opts ...Option) *Core {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	registry := dispatch.NewRegistry()
	return &Core{
		Store:       store.New(),
		Registry:    registry,
		Router:      dispatch.NewRouter(registry, cfg.metrics),
		Suppression: detect.NewSuppression(),
		Metrics:     cfg.metrics,
		Log:         cfg.logger,
	}
}

// Option configures a Core.
type Option func(*config)

type config struct {
	logger  *slog.Logger
	metrics metrics.Metrics
}

func defaultConfig() *config {
	return &config{
		logger:  logger.Default(),
		metrics: metrics.NewDefaultMetrics(),
	}
}

// WithLogger overrides the logger every connection and the accept loop use.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics overrides the metrics sink. If not provided, a DefaultMetrics
// with atomic counters is used.
func WithMetrics(m metrics.Metrics) Option {
	return func(c *config) {
		if m != nil {
			c.metrics = m
		}
	}
}
