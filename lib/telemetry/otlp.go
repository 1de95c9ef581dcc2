package telemetry

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// OtlpConnConfig points one signal at a collector, grpc wins when both
// endpoints are set and the signal is disabled when neither is.
type OtlpConnConfig struct {
	GrpcEndpoint string            `json:"grpc_endpoint"`
	HttpEndpoint string            `json:"http_endpoint"`
	Headers      map[string]string `json:"headers"`
}

func (c OtlpConnConfig) Enabled() bool {
	return c.GrpcEndpoint != "" || c.HttpEndpoint != ""
}

func (c OtlpConnConfig) logExporter(signal string) {
	protocol, endpoint := "grpc", c.GrpcEndpoint
	if endpoint == "" {
		protocol, endpoint = "http", c.HttpEndpoint
	}
	slog.Debug(
		"otlp exporter initialized",
		"signal", signal,
		"type", protocol,
		"endpoint", endpoint,
		"headers", len(c.Headers) > 0,
	)
}

type OtlpConfig struct {
	Traces  OtlpConnConfig `json:"traces"`
	Metrics OtlpConnConfig `json:"metrics"`
}

type Config struct {
	Otlp OtlpConfig `json:"otlp"`
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

func newTraceProvider(ctx context.Context, r *resource.Resource, c OtlpConnConfig) (*sdktrace.TracerProvider, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	var exporter sdktrace.SpanExporter
	var err error
	if c.GrpcEndpoint != "" {
		exporter, err = otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpointURL(c.GrpcEndpoint),
			otlptracegrpc.WithHeaders(c.Headers),
		)
	} else {
		exporter, err = otlptracehttp.New(
			ctx,
			otlptracehttp.WithEndpointURL(c.HttpEndpoint),
			otlptracehttp.WithHeaders(c.Headers),
		)
	}
	if err != nil {
		return nil, err
	}
	c.logExporter("traces")

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(r),
	), nil
}

// a scrape is short, Shutdown flushes whatever the periodic reader has not
// exported yet.
func newMetricProvider(ctx context.Context, r *resource.Resource, c OtlpConnConfig) (*sdkmetric.MeterProvider, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	var exporter sdkmetric.Exporter
	var err error
	if c.GrpcEndpoint != "" {
		exporter, err = otlpmetricgrpc.New(
			ctx,
			otlpmetricgrpc.WithEndpointURL(c.GrpcEndpoint),
			otlpmetricgrpc.WithHeaders(c.Headers),
		)
	} else {
		exporter, err = otlpmetrichttp.New(
			ctx,
			otlpmetrichttp.WithEndpointURL(c.HttpEndpoint),
			otlpmetrichttp.WithHeaders(c.Headers),
		)
	}
	if err != nil {
		return nil, err
	}
	c.logExporter("metrics")

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(time.Second*10))),
		sdkmetric.WithResource(r),
	), nil
}
