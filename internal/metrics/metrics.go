// Package metrics содержит Prometheus-метрики портала.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal считает входящие запросы по маршруту и коду ответа.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_http_requests_total",
			Help: "Количество HTTP запросов",
		},
		[]string{"route", "status"},
	)

	// HTTPRequestDuration измеряет длительность обработки входящих запросов.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_http_request_duration_seconds",
			Help:    "Длительность HTTP запросов",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// BackendRequestDuration измеряет обращения к бэкенду, outcome: success, error, validation.
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_backend_request_duration_seconds",
			Help:    "Длительность запросов к бэкенду",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "outcome"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_cache_hits_total",
			Help: "Количество попаданий в кэш",
		},
		[]string{"tag"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_cache_misses_total",
			Help: "Количество промахов кэша",
		},
		[]string{"tag"},
	)

	// EventsPublished считает события аудита; result: ok, error.
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_events_published_total",
			Help: "Количество опубликованных событий аудита",
		},
		[]string{"result"},
	)

	PaymentPolls = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_payment_polls_total",
			Help: "Количество запросов статуса платежа",
		},
	)
)
