// Package tracing integrates OpenTelemetry with the flume engine. All
// instrumentation is kept in a separate package so that applications which
// do not require tracing can exclude it from their build.
package tracing

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/petrijr/flume/pkg/api"
)

const tracerName = "github.com/petrijr/flume"

// Init configures OpenTelemetry with the stdout exporter. If outputFile is
// an empty string traces are written to os.Stdout. The function is safe to
// call multiple times; only the first call installs a provider, and later
// calls return that first call's error, if any.
func Init(serviceName, serviceVersion, outputFile string) error {
	var w io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		w = f
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return err
	}
	return installProvider(serviceName, serviceVersion, exporter)
}

// InitWithExporter configures OpenTelemetry using the supplied SpanExporter,
// allowing integration with any exporter supported by the SDK (OTLP, Jaeger,
// Zipkin). Safe to call multiple times; only the first call with a non-nil
// exporter installs a provider, and later calls return that call's error,
// if any. A nil exporter is ignored.
func InitWithExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	return installProvider(serviceName, serviceVersion, exporter)
}

var (
	providerOnce sync.Once
	providerErr  error
)

func installProvider(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	if exporter == nil {
		return nil
	}

	providerOnce.Do(func() {
		res, err := resource.New(context.Background(),
			resource.WithAttributes(
				attribute.String("service.name", serviceName),
				attribute.String("service.version", serviceVersion),
			),
		)
		if err != nil {
			providerErr = err
			return
		}

		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
			sdktrace.WithResource(res),
		)

		otel.SetTracerProvider(tp)
	})

	return providerErr
}

// Observer emits one span per processed event plus marker spans for
// instance start and completion. It implements api.Observer and is usually
// combined with a logging observer via api.NewCompositeObserver.
type Observer struct {
	tracer trace.Tracer
}

var _ api.Observer = (*Observer)(nil)

// NewObserver returns an Observer using the global tracer provider.
func NewObserver() *Observer {
	return &Observer{tracer: otel.Tracer(tracerName)}
}

// NewObserverWithProvider returns an Observer bound to the given provider,
// bypassing the global one.
func NewObserverWithProvider(tp trace.TracerProvider) *Observer {
	return &Observer{tracer: tp.Tracer(tracerName)}
}

func instanceAttrs(inst *api.ProcessInstance) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("flume.instance_id", inst.ID),
		attribute.String("flume.model", inst.ModelName),
	}
}

func (o *Observer) OnInstanceStart(ctx context.Context, inst *api.ProcessInstance) {
	_, span := o.tracer.Start(ctx, "flume.instance.start",
		trace.WithAttributes(instanceAttrs(inst)...))
	span.End()
}

func (o *Observer) OnEventProcessed(ctx context.Context, inst *api.ProcessInstance, ev api.Event, d time.Duration) {
	eventType := ""
	if ev != nil {
		eventType = ev.EventType()
	}
	// Backdate the span start so its duration matches the stepping time.
	_, span := o.tracer.Start(ctx, "flume.instance.step",
		trace.WithTimestamp(time.Now().Add(-d)),
		trace.WithAttributes(append(instanceAttrs(inst),
			attribute.String("flume.event_type", eventType),
			attribute.Int("flume.steps", len(inst.CurrentSteps)),
			attribute.Bool("flume.done", inst.Done()),
		)...))
	span.End()
}

func (o *Observer) OnInstanceCompleted(ctx context.Context, inst *api.ProcessInstance) {
	_, span := o.tracer.Start(ctx, "flume.instance.completed",
		trace.WithAttributes(append(instanceAttrs(inst),
			attribute.Int("flume.events", len(inst.Events)),
		)...))
	span.End()
}
