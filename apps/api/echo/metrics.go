package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	resultOK      = "ok"
	resultInvalid = "invalid"
	resultError   = "error"
)

// metrics are registered per Server so tests can build many servers.
type metrics struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	chatTotal       *prometheus.CounterVec
	uploadTotal     *prometheus.CounterVec
	contentWrites   *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mwalimu_http_request_duration_seconds",
				Help:    "Latency of HTTP requests in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "code"},
		),
		chatTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mwalimu_chat_requests_total",
				Help: "Total number of chat relay requests.",
			},
			[]string{"result"},
		),
		uploadTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mwalimu_slide_uploads_total",
				Help: "Total number of slide uploads.",
			},
			[]string{"result"},
		),
		contentWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mwalimu_course_content_writes_total",
				Help: "Total number of course content writes.",
			},
			[]string{"result"},
		),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.chatTotal,
		m.uploadTotal,
		m.contentWrites,
	)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metrics) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := time.Now()
		if err := next(ctx); err != nil {
			// render now so the recorded status is the one sent
			ctx.Error(err)
		}
		m.requestDuration.
			WithLabelValues(ctx.Request().Method, ctx.Path(), strconv.Itoa(ctx.Response().Status)).
			Observe(time.Since(start).Seconds())
		return nil
	}
}

// result buckets err into a metrics label.
func result(err error) string {
	switch {
	case err == nil:
		return resultOK
	case isClientError(err):
		return resultInvalid
	default:
		return resultError
	}
}
