package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pable/scorefix/internal/model"
)

// Phases timed by the runner.
const (
	PhaseLoad    = "load"
	PhaseBackup  = "backup"
	PhaseCorrect = "correct"
	PhaseWrite   = "write"
)

// Manager owns a private registry so a textfile holds only scorefix metrics.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         *prometheus.Registry

	runs        *prometheus.CounterVec
	rows        *prometheus.CounterVec
	corrections *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
	phase       *prometheus.HistogramVec
	lastRun     prometheus.Gauge
	finalScore  *prometheus.GaugeVec
}

// NewManager creates a metrics manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scorefix",
		histogramBuckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.runs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Name:        "runs_total",
		Help:        "Pipeline runs by status and reconciliation outcome",
		ConstLabels: m.constLabels,
	}, []string{"status", "outcome"})

	m.rows = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Name:        "rows_total",
		Help:        "Rows seen, dropped or synthesised, by kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.corrections = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Name:        "score_corrections_total",
		Help:        "Score readings repaired by the smoother",
		ConstLabels: m.constLabels,
	}, []string{"team", "kind"})

	m.diagnostics = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Name:        "diagnostics_total",
		Help:        "Non-fatal diagnostics by code",
		ConstLabels: m.constLabels,
	}, []string{"code"})

	m.phase = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Name:        "phase_duration_seconds",
		Help:        "Time spent in each run phase",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"phase"})

	m.lastRun = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Name:        "last_run_timestamp_seconds",
		Help:        "Unix time of the last observed run",
		ConstLabels: m.constLabels,
	})

	m.finalScore = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Name:        "final_score",
		Help:        "Terminal score of the last observed run",
		ConstLabels: m.constLabels,
	}, []string{"team"})
}

// ObservePhase records how long a run phase took.
func (m *Manager) ObservePhase(phase string, d time.Duration) {
	m.phase.WithLabelValues(phase).Observe(d.Seconds())
}

// ObserveRun records a finished, pending or failed run.
func (m *Manager) ObserveRun(r *model.RunSummary) {
	m.runs.WithLabelValues(string(r.Status), string(r.Outcome)).Inc()

	st := r.Stats
	for kind, n := range map[string]int{
		"raw":                st.RawRows,
		"unreadable":         st.UnreadableRows,
		"pre_match_dropped":  st.PreMatchDropped,
		"post_match_dropped": st.PostMatchDropped,
		"duplicate_dropped":  st.DuplicatesDropped,
		"gap_filled":         st.GapRowsFilled,
		"reorder_held":       st.ReorderedHeld,
		"output":             st.OutputRows,
	} {
		m.rows.WithLabelValues(kind).Add(float64(n))
	}

	for _, t := range []model.Team{model.Team1, model.Team2} {
		ts := st.Team(t)
		team := t.String()
		m.corrections.WithLabelValues(team, "gap_filled").Add(float64(ts.GapsFilled))
		m.corrections.WithLabelValues(team, "regression_held").Add(float64(ts.RegressionsHeld))
		m.corrections.WithLabelValues(team, "out_of_range").Add(float64(ts.OutOfRange))
		m.corrections.WithLabelValues(team, "jump_clamped").Add(float64(ts.JumpsClamped))
	}

	for _, d := range r.Diagnostics {
		m.diagnostics.WithLabelValues(string(d.Code)).Inc()
	}

	if r.CleanRows > 0 {
		m.finalScore.WithLabelValues(model.Team1.String()).Set(float64(r.FinalTeam1))
		m.finalScore.WithLabelValues(model.Team2.String()).Set(float64(r.FinalTeam2))
	}
	ts := r.UpdatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	m.lastRun.Set(float64(ts.Unix()))
}

// Gatherer exposes the private registry.
func (m *Manager) Gatherer() prometheus.Gatherer { return m.registry }

// WriteTextfile writes all metrics atomically in the text exposition format
// for node_exporter's textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
