package vdiff

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/scenekit/vdiff/hashcache"
	"github.com/scenekit/vdiff/policy"
	"github.com/scenekit/vdiff/snapshot"
)

// Option configures the Engine.
type Option func(*engineConfig)

// engineConfig holds configuration for an Engine instance.
type engineConfig struct {
	pol            *policy.Policy
	idProp         string
	includeLinked  bool
	budget         snapshot.Budget
	retainPayloads bool
	logger         *slog.Logger
	tracer         trace.Tracer
	meter          metric.Meter
	cache          hashcache.Cache
}

// WithPolicy installs a comparison policy. If not provided, the default
// policy is used.
func WithPolicy(pol *policy.Policy) Option {
	return func(c *engineConfig) {
		c.pol = pol
	}
}

// WithIDProp selects the custom tag property used for the strongest
// identity strategy. Entities carrying the property are matched by its
// value across snapshots.
func WithIDProp(name string) Option {
	return func(c *engineConfig) {
		c.idProp = name
	}
}

// WithLinked includes externally linked entities in snapshots. By default
// only locally authored entities are compared.
func WithLinked() Option {
	return func(c *engineConfig) {
		c.includeLinked = true
	}
}

// WithBudget caps snapshot builds. Exceeding the budget is the engine's
// single fatal condition.
func WithBudget(budget snapshot.Budget) Option {
	return func(c *engineConfig) {
		c.budget = budget
	}
}

// WithPayloads makes added and removed diff entries carry the full entity
// props instead of empty existence markers.
func WithPayloads() Option {
	return func(c *engineConfig) {
		c.retainPayloads = true
	}
}

// WithLogger sets a custom logger for the engine.
// If not provided, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer for the engine's operations.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *engineConfig) {
		c.tracer = tracer
	}
}

// WithMeter sets an OpenTelemetry meter; the engine creates its metric
// instruments on it.
func WithMeter(meter metric.Meter) Option {
	return func(c *engineConfig) {
		c.meter = meter
	}
}

// WithHashCache installs a digest cache consulted by HashFile.
func WithHashCache(cache hashcache.Cache) Option {
	return func(c *engineConfig) {
		c.cache = cache
	}
}
