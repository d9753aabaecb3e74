package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once
	metricsErr  error

	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Количество обработанных запросов",
	}, []string{"method", "route", "status"})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Латентность HTTP-запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	canonicalRedirectsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "canonical_redirects_total",
		Help: "308-редиректы на канонический URL",
	})

	cspReportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "csp_reports_total",
		Help: "Полученные отчёты о нарушениях CSP",
	}, []string{"directive"})
)

// RegisterMetrics регистрирует коллекторы и возвращает handler для /metrics.
func RegisterMetrics(reg prometheus.Registerer) (http.Handler, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	metricsOnce.Do(func() {
		for _, c := range []prometheus.Collector{
			httpRequestsTotal, httpRequestDuration, canonicalRedirectsTotal, cspReportsTotal,
		} {
			if err := registerCollector(reg, c); err != nil {
				metricsErr = err
				return
			}
		}
	})
	if metricsErr != nil {
		return nil, metricsErr
	}
	return promhttp.Handler(), nil
}

// CountRedirect — OnRedirect для SecurityOptions.
func CountRedirect(_, _ string) {
	canonicalRedirectsTotal.Inc()
}

// CountCSPReport — учёт отчёта о нарушении по директиве.
func CountCSPReport(directive string) {
	if directive == "" {
		directive = "unknown"
	}
	// Директиву режем до имени: "script-src-elem 'self'" -> "script-src-elem"
	if i := strings.IndexByte(directive, ' '); i > 0 {
		directive = directive[:i]
	}
	cspReportsTotal.WithLabelValues(directive).Inc()
}

// WithMetrics считает запросы по шаблону маршрута chi (а не по сырому пути — иначе взрыв кардинальности).
func WithMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		method := strings.ToUpper(r.Method)
		httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	})
}

// registerCollector регистрирует коллектор, игнорируя повторную регистрацию.
func registerCollector(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}
