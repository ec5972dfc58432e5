// Package tracing настраивает OpenTelemetry для портала.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
)

const ServiceName = "parcel-portal"

// Init регистрирует глобальный провайдер трассировки с OTLP/HTTP экспортером.
// Без endpoint трассировка не экспортируется, но W3C-пропагатор всё равно
// устанавливается, чтобы заголовки traceparent передавались в бэкенд.
// Возвращает функцию остановки провайдера.
func Init(ctx context.Context, endpoint string, logger *zap.Logger) (func(context.Context) error, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if endpoint == "" {
		logger.Info("tracing disabled: no OTLP endpoint")
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(ServiceName),
		)),
	)
	otel.SetTracerProvider(tp)

	logger.Info("tracing enabled", zap.String("endpoint", endpoint))

	return tp.Shutdown, nil
}
