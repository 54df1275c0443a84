package server

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tartampluch/go-valentine/internal/config"
)

// metrics owns a private registry so tests can build many servers.
type metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	streamsActive   prometheus.Gauge
	loginFailures   prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      config.MetricRequestsTotal,
			Help:      config.HelpRequestsTotal,
		}, []string{config.MetricLabelMethod, config.MetricLabelPath, config.MetricLabelStatus}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.MetricsNamespace,
			Name:      config.MetricRequestDuration,
			Help:      config.HelpRequestDuration,
			Buckets:   prometheus.DefBuckets,
		}, []string{config.MetricLabelMethod, config.MetricLabelPath}),
		streamsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: config.MetricsNamespace,
			Name:      config.MetricStreamsActive,
			Help:      config.HelpStreamsActive,
		}),
		loginFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      config.MetricLoginFailures,
			Help:      config.HelpLoginFailures,
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestDuration,
		m.streamsActive,
		m.loginFailures,
	)
	return m
}

func (s *Server) setupMetrics() {
	m := s.metrics
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status, _ = statusOf(err)
			}
			// c.Path is the route pattern, which keeps label cardinality bounded.
			m.requestsTotal.WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).Inc()
			m.requestDuration.WithLabelValues(c.Request().Method, c.Path()).Observe(time.Since(start).Seconds())
			return err
		}
	})

	s.echo.GET(config.RouteMetrics, echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})))
}
