// Package telemetry records traces and metrics for completion requests.
// Everything is off unless switched on through the environment, and every
// method is safe to call on a nil or disabled Provider.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/dhamidi/filterq"

type Config struct {
	ServiceName   string
	EnableMetrics bool
	EnableTraces  bool
	// Writer receives exported spans. Defaults to os.Stderr because stdout
	// carries the language server protocol.
	Writer io.Writer
}

type Provider struct {
	cfg            Config
	reader         *sdkmetric.ManualReader
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer

	requests metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Int64Histogram

	shutdownOnce sync.Once
}

func Setup(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.EnableMetrics && !cfg.EnableTraces {
		return &Provider{cfg: cfg}, nil
	}
	if strings.TrimSpace(cfg.ServiceName) == "" {
		cfg.ServiceName = "filterq"
	}
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}

	p := &Provider{cfg: cfg}

	if cfg.EnableMetrics {
		p.reader = sdkmetric.NewManualReader()
		p.meterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(p.reader),
			sdkmetric.WithResource(res),
		)
		otel.SetMeterProvider(p.meterProvider)
		if err := p.createInstruments(p.meterProvider.Meter(instrumentationName)); err != nil {
			return nil, err
		}
	}

	if cfg.EnableTraces {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(cfg.Writer))
		if err != nil {
			return nil, fmt.Errorf("init stdout trace exporter: %w", err)
		}
		p.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exp, sdktrace.WithMaxExportBatchSize(64)),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(p.tracerProvider)
		p.tracer = p.tracerProvider.Tracer(instrumentationName)
	}

	return p, nil
}

func (p *Provider) createInstruments(meter metric.Meter) error {
	var err error
	p.requests, err = meter.Int64Counter("filterq.requests",
		metric.WithDescription("Number of language server requests handled"))
	if err != nil {
		return fmt.Errorf("create request counter: %w", err)
	}
	p.failures, err = meter.Int64Counter("filterq.request.errors",
		metric.WithDescription("Number of language server requests that failed"))
	if err != nil {
		return fmt.Errorf("create error counter: %w", err)
	}
	p.duration, err = meter.Int64Histogram("filterq.request.duration",
		metric.WithDescription("Request latency"),
		metric.WithUnit("ms"))
	if err != nil {
		return fmt.Errorf("create duration histogram: %w", err)
	}
	return nil
}

// Enabled reports whether any signal is being recorded.
func (p *Provider) Enabled() bool {
	return p != nil && (p.meterProvider != nil || p.tracerProvider != nil)
}

// Collect reads the current metrics. It returns nil when metrics are off.
func (p *Provider) Collect(ctx context.Context) (*metricdata.ResourceMetrics, error) {
	if p == nil || p.reader == nil {
		return nil, nil
	}
	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return nil, err
	}
	return &rm, nil
}

// Shutdown flushes and stops the configured providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var err error
	p.shutdownOnce.Do(func() {
		var errs []error
		if p.meterProvider != nil {
			if shutdownErr := p.meterProvider.Shutdown(ctx); shutdownErr != nil {
				errs = append(errs, shutdownErr)
			}
		}
		if p.tracerProvider != nil {
			if shutdownErr := p.tracerProvider.Shutdown(ctx); shutdownErr != nil {
				errs = append(errs, shutdownErr)
			}
		}
		if len(errs) > 0 {
			err = errors.Join(errs...)
		}
	})
	return err
}

// RequestHandle tracks one request from StartRequest to End.
type RequestHandle struct {
	p     *Provider
	ctx   context.Context
	span  trace.Span
	start time.Time
	attrs []attribute.KeyValue
}

// StartRequest opens a span for an LSP method. The returned context carries
// the span.
func (p *Provider) StartRequest(ctx context.Context, method string) (*RequestHandle, context.Context) {
	if !p.Enabled() {
		return nil, ctx
	}
	h := &RequestHandle{
		p:     p,
		start: time.Now(),
		attrs: []attribute.KeyValue{attribute.String("lsp.method", method)},
	}
	if p.tracer != nil {
		ctx, h.span = p.tracer.Start(ctx, "lsp."+method,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(h.attrs...))
	}
	h.ctx = ctx
	return h, ctx
}

// End records the outcome. items is the number of completion items or
// diagnostics the request produced.
func (h *RequestHandle) End(items int, err error) {
	if h == nil {
		return
	}
	attrs := append(h.attrs, attribute.Int("items", items))
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	attrs = append(attrs, attribute.String("outcome", outcome))

	p := h.p
	if p.meterProvider != nil {
		p.requests.Add(h.ctx, 1, metric.WithAttributes(attrs...))
		if err != nil {
			p.failures.Add(h.ctx, 1, metric.WithAttributes(attrs...))
		}
		p.duration.Record(h.ctx, time.Since(h.start).Milliseconds(), metric.WithAttributes(attrs...))
	}

	if h.span != nil {
		h.span.SetAttributes(attrs...)
		if err != nil {
			h.span.RecordError(err)
			h.span.SetStatus(codes.Error, err.Error())
		}
		h.span.End()
	}
}

// EnvBool interprets FILTERQ_* env toggles.
func EnvBool(value string, defaultOn bool) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	switch value {
	case "":
		return defaultOn
	case "1", "true", "on", "enable", "enabled", "yes":
		return true
	case "0", "false", "off", "disable", "disabled", "no":
		return false
	default:
		return defaultOn
	}
}

// LoadConfigFromEnv reads FILTERQ_OTEL_TRACES, FILTERQ_OTEL_METRICS and
// FILTERQ_OTEL_SERVICE_NAME.
func LoadConfigFromEnv() Config {
	return Config{
		ServiceName:   os.Getenv("FILTERQ_OTEL_SERVICE_NAME"),
		EnableTraces:  EnvBool(os.Getenv("FILTERQ_OTEL_TRACES"), false),
		EnableMetrics: EnvBool(os.Getenv("FILTERQ_OTEL_METRICS"), false),
	}
}
