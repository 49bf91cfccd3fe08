package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/schloss/internal/contracts"
	"github.com/wonny/schloss/pkg/logger"
)

const namespace = "schloss"

// Fetch attempt results
const (
	AttemptOK          = "ok"
	AttemptRateLimited = "rate_limited"
	AttemptError       = "error"
)

// Registry holds every screener metric on a private prometheus registry
// ⭐ SSOT: 메트릭 정의는 여기서만
type Registry struct {
	reg *prometheus.Registry

	Verdicts       *prometheus.CounterVec
	Rejections     *prometheus.CounterVec
	FetchAttempts  *prometheus.CounterVec
	StageDuration  *prometheus.HistogramVec
	Runs           *prometheus.CounterVec
	Qualifying     prometheus.Gauge
	UniverseSize   prometheus.Gauge
	LastRunSuccess prometheus.Gauge

	logger *logger.Logger
}

var _ contracts.ScreeningObserver = (*Registry)(nil)

// NewRegistry creates and registers all metrics
func NewRegistry(log *logger.Logger) *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		Verdicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "verdicts_total",
				Help:      "Screening verdicts by status",
			},
			[]string{"status"},
		),

		Rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rejections_total",
				Help:      "Rejected symbols by first failing rule",
			},
			[]string{"rule"},
		),

		FetchAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_attempts_total",
				Help:      "Market data fetch attempts by result",
			},
			[]string{"result"},
		),

		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of each run stage in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 1800, 3600, 7200},
			},
			[]string{"stage"},
		),

		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Completed runs by result",
			},
			[]string{"result"},
		),

		Qualifying: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "qualifying_symbols",
			Help:      "Symbols that qualified in the last run",
		}),

		UniverseSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "universe_symbols",
			Help:      "Symbols loaded for the last run",
		}),

		LastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}),

		logger: log,
	}

	r.reg.MustRegister(
		r.Verdicts,
		r.Rejections,
		r.FetchAttempts,
		r.StageDuration,
		r.Runs,
		r.Qualifying,
		r.UniverseSize,
		r.LastRunSuccess,
	)

	return r
}

// Gatherer exposes the underlying registry
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// ObserveVerdict counts one verdict
func (r *Registry) ObserveVerdict(v contracts.Verdict) {
	r.Verdicts.WithLabelValues(string(v.Status)).Inc()
	if v.Status == contracts.VerdictRejected && v.Reason != "" {
		r.Rejections.WithLabelValues(v.Reason).Inc()
	}
}

// ObserveFetchAttempt counts one fetch attempt by outcome
func (r *Registry) ObserveFetchAttempt(symbol contracts.TickerSymbol, attempt int, err error) {
	result := AttemptOK
	switch {
	case err == nil:
	case errors.Is(err, contracts.ErrRateLimited):
		result = AttemptRateLimited
	default:
		result = AttemptError
	}
	r.FetchAttempts.WithLabelValues(result).Inc()
}

// ObserveRun records the outcome of a whole run
func (r *Registry) ObserveRun(result *contracts.RunResult, universe int, err error) {
	r.UniverseSize.Set(float64(universe))
	if result != nil {
		r.Qualifying.Set(float64(len(result.Qualifying)))
	}

	if err != nil {
		r.Runs.WithLabelValues("failure").Inc()
		return
	}
	r.Runs.WithLabelValues("success").Inc()
	r.LastRunSuccess.SetToCurrentTime()
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// WriteTextfile writes the registry for node_exporter's textfile collector
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return err
	}
	r.logger.WithField("path", path).Debug("Metrics textfile written")
	return nil
}
