package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "citymesh"

// Metrics holds the decision pipeline's metric instruments. It satisfies the
// decision engine's metrics hook.
type Metrics struct {
	Decisions        metric.Int64Counter
	DecisionFailures metric.Int64Counter
	Confidence       metric.Float64Histogram
	DecisionLatency  metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.Decisions, err = meter.Int64Counter("citymesh.decisions",
		metric.WithDescription("Number of decisions produced"))
	if err != nil {
		return nil, err
	}

	m.DecisionFailures, err = meter.Int64Counter("citymesh.decisions.degraded",
		metric.WithDescription("Number of degraded fallback decisions"))
	if err != nil {
		return nil, err
	}

	m.Confidence, err = meter.Float64Histogram("citymesh.decision.confidence",
		metric.WithDescription("Confidence score distribution"))
	if err != nil {
		return nil, err
	}

	m.DecisionLatency, err = meter.Float64Histogram("citymesh.decision.duration_seconds",
		metric.WithDescription("Decision latency in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordDecision records one completed decision. A confidence at the
// degraded floor counts as a failure.
func (m *Metrics) RecordDecision(ctx context.Context, queryType string, confidence float64, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("query_type", queryType))

	m.Decisions.Add(ctx, 1, attrs)
	if confidence <= 0.1 {
		m.DecisionFailures.Add(ctx, 1, attrs)
	}
	m.Confidence.Record(ctx, confidence, attrs)
	m.DecisionLatency.Record(ctx, elapsed.Seconds(), attrs)
}
