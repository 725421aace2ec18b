package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer
	msgCounter     otelmetric.Int64Counter
	msgDuration    otelmetric.Float64Histogram
}

// New sets up the OTel meter (prometheus exporter) and tracer. jaegerURL may
// be empty, in which case spans are recorded against a no-export provider.
func New(serviceName, jaegerURL string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	msgCounter, _ := meter.Int64Counter(
		"messages.processed",
		otelmetric.WithDescription("Number of user messages processed"),
	)

	msgDuration, _ := meter.Float64Histogram(
		"messages.duration",
		otelmetric.WithDescription("Message handling duration"),
		otelmetric.WithUnit("ms"),
	)

	var traceOpts []sdktrace.TracerProviderOption
	if jaegerURL != "" {
		traceExporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(jaegerURL)))
		if err != nil {
			log.Printf("Failed to create Jaeger exporter: %v", err)
		} else {
			traceOpts = append(traceOpts, sdktrace.WithBatcher(traceExporter))
		}
	}
	tracerProvider := sdktrace.NewTracerProvider(traceOpts...)
	otel.SetTracerProvider(tracerProvider)

	return &Observability{
		meterProvider:  provider,
		tracerProvider: tracerProvider,
		meter:          meter,
		tracer:         tracerProvider.Tracer(serviceName),
		msgCounter:     msgCounter,
		msgDuration:    msgDuration,
	}
}

// StartSpan begins a pipeline-stage span. Returns the input context unchanged
// when tracing was not initialized.
func (o *Observability) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if o.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return o.tracer.Start(ctx, name)
}

func (o *Observability) RecordMessageProcessed(ctx context.Context, status string) {
	if o.msgCounter != nil {
		o.msgCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordMessageDuration(ctx context.Context, duration time.Duration, status string) {
	if o.msgDuration != nil {
		o.msgDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
