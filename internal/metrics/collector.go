// Package metrics exposes Prometheus instruments for generation and HTTP
// traffic on a dedicated registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"assetstudio/internal/domain"
)

const Namespace = "assetstudio"

// Collector holds every instrument. Each Collector owns its registry so
// several instances can coexist in one process.
type Collector struct {
	registry *prometheus.Registry

	generationsTotal   *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	imagesSaved        *prometheus.CounterVec
	imagesSkipped      *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewCollector registers the instruments under namespace. An empty namespace
// uses Namespace.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = Namespace
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		generationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generations_total",
				Help:      "Generation calls by asset kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		generationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "Latency of generation calls to the image service",
				Buckets:   []float64{1, 5, 10, 20, 30, 60, 120, 300},
			},
			[]string{"kind"},
		),
		imagesSaved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "images_saved_total",
				Help:      "Images written to the output directory",
			},
			[]string{"kind"},
		),
		imagesSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "images_skipped_total",
				Help:      "Images dropped because the response carried no usable url",
			},
			[]string{"kind"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// Registry returns the registry backing c.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) ObserveGeneration(kind domain.AssetKind, outcome string, elapsed time.Duration) {
	c.generationsTotal.WithLabelValues(string(kind), outcome).Inc()
	c.generationDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

func (c *Collector) AddSaved(kind domain.AssetKind, n int) {
	c.imagesSaved.WithLabelValues(string(kind)).Add(float64(n))
}

func (c *Collector) AddSkipped(kind domain.AssetKind, n int) {
	c.imagesSkipped.WithLabelValues(string(kind)).Add(float64(n))
}

// RecordHTTPRequest records one served request. route is the matched pattern,
// not the raw path, to keep label cardinality bounded.
func (c *Collector) RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
