// internal/common/observability/metrics.go
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

// Observability records slot runs through OpenTelemetry. Metrics are
// exported on the default Prometheus registry next to the promauto ones.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	tracer        trace.Tracer
	runCounter    otelmetric.Int64Counter
	runDuration   otelmetric.Float64Histogram
}

// New builds the meter provider. Exporter failures degrade to a no-op
// recorder; observability never blocks the pipeline.
func New(serviceName string) (*Observability, error) {
	o := &Observability{tracer: otel.Tracer(serviceName)}

	exporter, err := prometheus.New()
	if err != nil {
		return o, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	o.meterProvider = provider
	o.meter = provider.Meter(serviceName)

	o.runCounter, _ = o.meter.Int64Counter(
		"scheduler.slot.runs",
		otelmetric.WithDescription("Number of schedule slots executed"),
	)
	o.runDuration, _ = o.meter.Float64Histogram(
		"scheduler.slot.duration",
		otelmetric.WithDescription("Slot processing duration"),
		otelmetric.WithUnit("ms"),
	)

	return o, nil
}

// NewNoop returns a recorder that only creates no-op spans.
func NewNoop() *Observability {
	return &Observability{tracer: otel.Tracer("noop")}
}

// StartSpan starts a span for one pipeline stage.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, trace.Span) {
	kv := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		kv = append(kv, attribute.String(k, v))
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(kv...))
}

func (o *Observability) RecordSlotRun(ctx context.Context, trigger, status string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("trigger", trigger),
		attribute.String("status", status),
	)
	if o.runCounter != nil {
		o.runCounter.Add(ctx, 1, attrs)
	}
	if o.runDuration != nil {
		o.runDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.meterProvider.Shutdown(ctx)
	}
}
