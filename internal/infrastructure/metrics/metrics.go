// Package metrics expone métricas Prometheus del gateway: llamadas a la API de
// facturación, aciertos de caché y peticiones HTTP entrantes.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "invoice_gateway"

// Resultados de una consulta a la caché.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Config etiquetas fijas de todas las series.
type Config struct {
	ServiceName string
	Environment string
}

// Metrics registro propio (no el global) con los colectores del gateway.
type Metrics struct {
	registry         *prometheus.Registry
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New crea el registro con los colectores de runtime de Go y de proceso.
func New(cfg Config) *Metrics {
	service := strings.TrimSpace(cfg.ServiceName)
	if service == "" {
		service = "invoice-gateway"
	}
	env := strings.TrimSpace(cfg.Environment)
	if env == "" {
		env = "unknown"
	}
	constLabels := prometheus.Labels{"service": service, "env": env}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "upstream_requests_total",
			Help:        "Llamadas a la API de facturación por método, ruta y código.",
			ConstLabels: constLabels,
		}, []string{"method", "route", "code"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "upstream_request_duration_seconds",
			Help:        "Latencia de la API de facturación.",
			Buckets:     []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
			ConstLabels: constLabels,
		}, []string{"method", "route"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "cache_lookups_total",
			Help:        "Consultas a la caché por tipo de clave y resultado.",
			ConstLabels: constLabels,
		}, []string{"kind", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "http_requests_total",
			Help:        "Peticiones HTTP atendidas por el gateway.",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "http_request_duration_seconds",
			Help:        "Latencia de las peticiones HTTP del gateway.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.upstreamRequests,
		m.upstreamDuration,
		m.cacheLookups,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Registry devuelve el registro (tests y exportadores adicionales).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler handler de exposición en formato texto de Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTP registra una petición entrante; route es la plantilla (/api/invoices/:id).
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveCache registra el resultado de una consulta a la caché.
func (m *Metrics) ObserveCache(kind, result string) {
	m.cacheLookups.WithLabelValues(kind, result).Inc()
}

// routeTemplate sustituye los segmentos numéricos por :id para acotar la cardinalidad.
func routeTemplate(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if _, err := strconv.ParseInt(p, 10, 64); err == nil {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}
