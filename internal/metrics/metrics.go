package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resume_screener"

// Recorder owns a private registry. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	requestTotal     *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	documentsTotal   *prometheus.CounterVec
	llmRequestsTotal *prometheus.CounterVec
	llmDuration      *prometheus.HistogramVec
	llmTokensTotal   *prometheus.CounterVec
}

func NewRecorder(service string) *Recorder {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	r := &Recorder{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "http",
				Name:        "requests_total",
				Help:        "Total HTTP requests processed.",
				ConstLabels: constLabels,
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "http",
				Name:        "request_duration_seconds",
				Help:        "HTTP request duration in seconds.",
				Buckets:     []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
				ConstLabels: constLabels,
			},
			[]string{"method", "path"},
		),
		documentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "screening",
				Name:        "documents_total",
				Help:        "Resumes processed, by outcome.",
				ConstLabels: constLabels,
			},
			[]string{"outcome"},
		),
		llmRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "llm",
				Name:        "requests_total",
				Help:        "Model provider calls, by operation and status.",
				ConstLabels: constLabels,
			},
			[]string{"operation", "status"},
		),
		llmDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "llm",
				Name:        "request_duration_seconds",
				Help:        "Model provider call latency in seconds.",
				Buckets:     []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
				ConstLabels: constLabels,
			},
			[]string{"operation"},
		),
		llmTokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "llm",
				Name:        "tokens_total",
				Help:        "Tokens reported by the model provider.",
				ConstLabels: constLabels,
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.requestTotal,
		r.requestDuration,
		r.documentsTotal,
		r.llmRequestsTotal,
		r.llmDuration,
		r.llmTokensTotal,
	)

	return r
}

// Middleware records request counts and latency keyed by the matched route.
func (r *Recorder) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if r == nil {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		path := c.Route().Path
		r.requestTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		r.requestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
}

func (r *Recorder) ObserveDocument(outcome string) {
	if r == nil {
		return
	}
	r.documentsTotal.WithLabelValues(outcome).Inc()
}

func (r *Recorder) ObserveLLMCall(operation, status string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.llmRequestsTotal.WithLabelValues(operation, status).Inc()
	r.llmDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (r *Recorder) AddTokens(kind string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.llmTokensTotal.WithLabelValues(kind).Add(float64(n))
}
