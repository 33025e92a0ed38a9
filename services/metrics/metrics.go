package metrics

import (
	"net/http"
	"strconv"
	"time"

	"patientsim/models"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns the simulator's Prometheus collectors on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	sessions       prometheus.Counter
	turns          prometheus.Counter
	verdicts       *prometheus.CounterVec
	coverage       prometheus.Histogram
	skippedRecords prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		sessions: factory.NewCounter(prometheus.CounterOpts{
			Name: "patientsim_sessions_total",
			Help: "Total number of completed interview simulations",
		}),
		turns: factory.NewCounter(prometheus.CounterOpts{
			Name: "patientsim_turns_total",
			Help: "Total number of evaluated doctor/patient exchanges",
		}),
		verdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "patientsim_verdicts_total",
			Help: "Final diagnosis verdicts by confidence tier",
		}, []string{"confidence"}),
		coverage: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "patientsim_coverage_ratio",
			Help:    "Explicit symptom coverage at the end of each interview",
			Buckets: []float64{0, .1, .2, .3, .4, .5, .6, .7, .8, .9, 1},
		}),
		skippedRecords: factory.NewCounter(prometheus.CounterOpts{
			Name: "patientsim_skipped_records_total",
			Help: "Patient records skipped during preprocessing",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "patientsim_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "patientsim_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "route"}),
	}
}

func (r *Recorder) ObserveTurn() {
	r.turns.Inc()
}

func (r *Recorder) ObserveSession(report models.Report) {
	r.sessions.Inc()
	r.verdicts.WithLabelValues(string(report.Verdict.Confidence)).Inc()
	r.coverage.Observe(report.Coverage)
}

func (r *Recorder) ObserveSkipped(n int) {
	r.skippedRecords.Add(float64(n))
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Middleware counts requests per route template so path parameters do not
// blow up label cardinality.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, req)

		route := req.URL.Path
		if current := mux.CurrentRoute(req); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		r.httpRequests.WithLabelValues(req.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		r.httpDuration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
