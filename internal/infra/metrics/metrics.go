package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

type Metrics struct {
	registry    *prometheus.Registry
	conversions *prometheus.CounterVec
	requests    *prometheus.CounterVec
}

// New собственный реестр, чтобы тесты не конфликтовали с глобальным.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "unitconv",
			Name:      "conversions_total",
			Help:      "Conversions by category and outcome.",
		}, []string{"category", "outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "unitconv",
			Name:      "requests_total",
			Help:      "Requests by surface (http, bot, cli) and route.",
		}, []string{"surface", "route"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.conversions,
		m.requests,
	)
	return m
}

// ObserveConversion nil-safe: CLI работает без метрик.
func (m *Metrics) ObserveConversion(category string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	if category == "" {
		category = "unknown"
	}
	m.conversions.WithLabelValues(category, outcome).Inc()
}

func (m *Metrics) ObserveRequest(surface, route string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(surface, route).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
