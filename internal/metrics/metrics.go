// Package metrics exposes Prometheus collectors for HTTP traffic and marketplace events.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "whfood"

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	productViews  prometheus.Counter
	contactClicks prometheus.Counter
	searches      *prometheus.CounterVec
	reviews       prometheus.Counter
	moderation    *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		productViews: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "product_views_total",
			Help:      "Product detail page views",
		}),
		contactClicks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "whatsapp_contacts_total",
			Help:      "Redirects to a seller's WhatsApp chat",
		}),
		searches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Product searches by outcome",
		}, []string{"result"}),
		reviews: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_submitted_total",
			Help:      "Reviews created or updated",
		}),
		moderation: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moderation_actions_total",
			Help:      "Admin moderation actions",
		}, []string{"action"}),
	}
}

// Middleware records request counts and latency labelled by the matched route pattern,
// so /products/1 and /products/2 share one series.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		if route == "" || (route == "/" && c.Path() != "/") {
			route = "unmatched"
		}

		m.httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}

func (m *Metrics) ProductViewed() {
	if m != nil {
		m.productViews.Inc()
	}
}

func (m *Metrics) ContactClicked() {
	if m != nil {
		m.contactClicks.Inc()
	}
}

func (m *Metrics) Searched(found bool) {
	if m == nil {
		return
	}
	result := "hit"
	if !found {
		result = "miss"
	}
	m.searches.WithLabelValues(result).Inc()
}

func (m *Metrics) ReviewSubmitted() {
	if m != nil {
		m.reviews.Inc()
	}
}

func (m *Metrics) Moderated(action string) {
	if m != nil {
		m.moderation.WithLabelValues(action).Inc()
	}
}
