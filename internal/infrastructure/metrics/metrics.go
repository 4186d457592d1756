// Package metrics expone contadores Prometheus del motor y de la API HTTP
// sobre un registro propio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Recursos-api/internal/application/ports"
)

var _ ports.CommandMetrics = (*Metrics)(nil)

// Metrics agrupa los colectores registrados.
type Metrics struct {
	registry       *prometheus.Registry
	commands       *prometheus.CounterVec
	overAllocation prometheus.Counter
	requests       *prometheus.HistogramVec
}

// New crea el registro con los colectores del proceso y de Go.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Comandos del motor de recursos por resultado.",
		}, []string{"command", "result"}),
		overAllocation: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "over_allocation_warnings_total",
			Help:      "Advertencias de sobreasignación emitidas.",
		}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.commands,
		m.overAllocation,
		m.requests,
	)
	return m
}

// ObserveCommand incrementa el contador del comando.
func (m *Metrics) ObserveCommand(command, result string) {
	m.commands.WithLabelValues(command, result).Inc()
}

// ObserveOverAllocation incrementa el contador de advertencias.
func (m *Metrics) ObserveOverAllocation() {
	m.overAllocation.Inc()
}

// Handler sirve el formato de exposición de Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware mide cada petición por ruta registrada (no por URL, para acotar la cardinalidad).
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		m.requests.WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}

// Registry expone el registro, p. ej. para tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
