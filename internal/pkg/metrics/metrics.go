package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrega as métricas Prometheus do StockMaster.
type Metrics struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	validationsTotal   *prometheus.CounterVec
	validationDuration prometheus.Histogram
	validationRetries  prometheus.Counter
	movementsTotal     *prometheus.CounterVec
}

// New inicializa o registry e registra todas as métricas.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockmaster_http_requests_total",
			Help: "Requisições HTTP por rota e status.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stockmaster_http_request_duration_seconds",
			Help:    "Duração das requisições HTTP por rota.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		validationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockmaster_validations_total",
			Help: "Validações de operação por tipo e resultado.",
		}, []string{"kind", "outcome"}),
		validationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockmaster_validation_duration_seconds",
			Help:    "Duração da unidade de trabalho de validação.",
			Buckets: prometheus.DefBuckets,
		}),
		validationRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockmaster_validation_retries_total",
			Help: "Tentativas repetidas após conflito de serialização ou deadlock.",
		}),
		movementsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockmaster_movements_total",
			Help: "Movimentos gravados no livro-razão por tipo.",
		}, []string{"type"}),
	}
	registry.MustRegister(
		m.requestsTotal, m.requestDuration,
		m.validationsTotal, m.validationDuration, m.validationRetries, m.movementsTotal,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler devolve o http.Handler do endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware registra contagem e duração de cada requisição HTTP.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveValidation registra o resultado de uma validação ("done", "already_validated", ...).
func (m *Metrics) ObserveValidation(kind, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.validationsTotal.WithLabelValues(kind, outcome).Inc()
	m.validationDuration.Observe(elapsed.Seconds())
}

// IncRetry conta uma repetição da unidade de trabalho.
func (m *Metrics) IncRetry() {
	if m == nil {
		return
	}
	m.validationRetries.Inc()
}

// AddMovements conta movimentos gravados de um tipo.
func (m *Metrics) AddMovements(kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.movementsTotal.WithLabelValues(kind).Add(float64(n))
}

// Registerer expõe o registry para métricas adicionais.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
