package obs

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Span names for the engine's traced operations.
const (
	SpanSnapshotBuild = "vdiff.snapshot.build"
	SpanDiffCompute   = "vdiff.diff.compute"
	SpanHashFile      = "vdiff.hash.file"
)

const instrumentationName = "vdiff"

// NewTracerProvider builds a TracerProvider tagged with the vdiff service
// resource. Exporters are attached by the caller via processor options; a
// provider with no processors records nothing, which is the default for
// library use.
func NewTracerProvider(logger *slog.Logger, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(instrumentationName),
		),
	)
	if err != nil {
		if logger != nil {
			logger.Warn("failed to create resource, using default", "error", err)
		}
		res = resource.Default()
	}

	opts = append(opts, sdktrace.WithResource(res))
	return sdktrace.NewTracerProvider(opts...)
}

// Tracer returns the engine's tracer from the given provider, or from the
// global provider when tp is nil.
func Tracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		return otel.Tracer(instrumentationName)
	}
	return tp.Tracer(instrumentationName)
}

// EndSpan closes a span, recording err as the span status when non-nil.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Metrics holds the engine's metric instruments. A nil *Metrics is valid
// and records nothing, so callers never branch on whether metrics are
// configured.
type Metrics struct {
	snapshotEntities metric.Int64Counter
	diffCount        metric.Int64Counter
	buildDuration    metric.Float64Histogram
}

// NewMetrics creates the engine's instruments on the given meter. A nil
// meter yields a nil, no-op Metrics.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		return nil, nil
	}

	m := &Metrics{}
	var err error

	m.snapshotEntities, err = meter.Int64Counter(
		"vdiff.snapshot.entities",
		metric.WithDescription("Number of entities captured into snapshots"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create entity counter: %w", err)
	}

	m.diffCount, err = meter.Int64Counter(
		"vdiff.diff.count",
		metric.WithDescription("Number of diff computations performed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create diff counter: %w", err)
	}

	m.buildDuration, err = meter.Float64Histogram(
		"vdiff.snapshot.duration",
		metric.WithDescription("Snapshot build duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	return m, nil
}

// RecordSnapshot records one snapshot build.
func (m *Metrics) RecordSnapshot(ctx context.Context, entities int, durationMs float64, source string) {
	if m == nil {
		return
	}
	opts := metric.WithAttributes(attribute.String("source", source))
	m.snapshotEntities.Add(ctx, int64(entities), opts)
	m.buildDuration.Record(ctx, durationMs, opts)
}

// RecordDiff records one diff computation and whether it found changes.
func (m *Metrics) RecordDiff(ctx context.Context, changed bool) {
	if m == nil {
		return
	}
	m.diffCount.Add(ctx, 1, metric.WithAttributes(attribute.Bool("changed", changed)))
}
