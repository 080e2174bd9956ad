package calculator

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metric instruments. They are no-ops until InitMetrics runs.
var (
	opsCounter      metric.Int64Counter     = noop.Int64Counter{}
	opsHistogram    metric.Float64Histogram = noop.Float64Histogram{}
	historyLength   metric.Int64Histogram   = noop.Int64Histogram{}
	errorCounter    metric.Int64Counter     = noop.Int64Counter{}
	advisoryCounter metric.Int64Counter     = noop.Int64Counter{}
	resultGauge     metric.Float64Gauge     = noop.Float64Gauge{}
)

// InitMetrics registers the calculator's metric instruments. Call it once at
// startup, after observability.InitMetrics.
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	opsCounter, err = meter.Int64Counter("calculator.operations.total",
		metric.WithDescription("Total number of calculator requests served"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return fmt.Errorf("creating ops counter: %w", err)
	}

	opsHistogram, err = meter.Float64Histogram("calculator.evaluation.duration",
		metric.WithDescription("Duration of history replays in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10),
	)
	if err != nil {
		return fmt.Errorf("creating ops histogram: %w", err)
	}

	historyLength, err = meter.Int64Histogram("calculator.history.length",
		metric.WithDescription("Number of elements replayed per evaluation"),
		metric.WithUnit("{element}"),
		metric.WithExplicitBucketBoundaries(1, 2, 5, 10, 20, 50, 100, 500),
	)
	if err != nil {
		return fmt.Errorf("creating history histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of failed calculator requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	advisoryCounter, err = meter.Int64Counter("calculator.advisories.total",
		metric.WithDescription("Total number of domain advisories reported by evaluations"),
		metric.WithUnit("{advisory}"),
	)
	if err != nil {
		return fmt.Errorf("creating advisory counter: %w", err)
	}

	resultGauge, err = meter.Float64Gauge("calculator.last_result",
		metric.WithDescription("The last finite result produced by an evaluation"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating result gauge: %w", err)
	}

	return nil
}
