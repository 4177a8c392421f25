package runtime

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/mohammad-safakhou/newsdesk/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Tracing owns the process tracer provider.
type Tracing struct {
	tp *sdktrace.TracerProvider
}

// SetupTracing installs an OTLP exporting tracer provider as the global one.
// When telemetry is disabled or no endpoint is set the global no-op provider
// is left in place.
func SetupTracing(ctx context.Context, cfg config.TelemetryConfig, version string) (*Tracing, error) {
	if !cfg.Enabled || cfg.OTLPEndpoint == "" {
		return &Tracing{}, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(version),
			attribute.String("service.namespace", "newsdesk"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("resource init: %w", err)
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("otlp init: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return &Tracing{tp: tp}, nil
}

// Shutdown flushes pending spans.
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t == nil || t.tp == nil {
		return nil
	}
	if err := t.tp.Shutdown(ctx); err != nil {
		return fmt.Errorf("trace shutdown: %w", err)
	}
	return nil
}

// ServeMetrics exposes handler on its own port in the background. It is used
// when metrics must not share the API listener.
func ServeMetrics(port int, handler http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	return server
}
