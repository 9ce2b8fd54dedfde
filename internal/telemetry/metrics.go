package telemetry

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/roach88/redux/internal/redux"
	"github.com/roach88/redux/internal/trace"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "redux"

// Metrics counts dispatch outcomes. It implements redux.Observer; attach it
// with redux.WithObserver.
//
// Each Metrics owns its registry, so concurrent scenario runs never share
// counters.
type Metrics struct {
	dispatched *prometheus.CounterVec
	rejected   *prometheus.CounterVec
	depth      prometheus.Histogram
	idGap      prometheus.Histogram
	maxDepth   prometheus.Gauge

	deepest  uint32
	registry *prometheus.Registry
}

// NewMetrics creates and registers the dispatch metrics.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),

		dispatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_dispatched_total",
				Help:      "Actions that passed their enabling condition and were dispatched",
			},
			[]string{"kind"},
		),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_rejected_total",
				Help:      "Actions whose enabling condition failed, at dispatch or at drain time",
			},
			[]string{"kind"},
		),
		depth: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_depth",
				Help:      "Recursion depth at which actions were dispatched",
				Buckets:   []float64{0, 1, 2, 4, 8, 16, 32},
			},
		),
		idGap: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "action_id_gap_nanoseconds",
				Help:      "Distance between consecutive action ids",
				Buckets:   prometheus.ExponentialBuckets(1, 10, 10),
			},
		),
		maxDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "dispatch_max_depth",
				Help:      "Deepest recursion depth observed",
			},
		),
	}

	m.registry.MustRegister(m.dispatched, m.rejected, m.depth, m.idGap, m.maxDepth)
	return m
}

// ActionDispatched implements redux.Observer.
func (m *Metrics) ActionDispatched(meta redux.ActionMeta, action any) {
	m.dispatched.WithLabelValues(trace.KindOf(action)).Inc()
	m.depth.Observe(float64(meta.Depth()))
	m.idGap.Observe(float64(meta.ID().DurationSince(meta.Prev())))
	if meta.Depth() > m.deepest {
		m.deepest = meta.Depth()
		m.maxDepth.Set(float64(m.deepest))
	}
}

// ActionRejected implements redux.Observer.
func (m *Metrics) ActionRejected(action any, _ redux.ActionID) {
	m.rejected.WithLabelValues(trace.KindOf(action)).Inc()
}

// Registry exposes the registry, e.g. for promhttp.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Gather collects the current metric families.
func (m *Metrics) Gather() ([]*dto.MetricFamily, error) {
	return m.registry.Gather()
}

// WriteSummary prints one line per counter series and histogram, sorted by
// name, in a compact human-readable form.
func (m *Metrics) WriteSummary(w io.Writer) error {
	families, err := m.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			name := mf.GetName() + labelString(metric.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				lines = append(lines, fmt.Sprintf("%s %g", name, metric.GetCounter().GetValue()))
			case dto.MetricType_GAUGE:
				lines = append(lines, fmt.Sprintf("%s %g", name, metric.GetGauge().GetValue()))
			case dto.MetricType_HISTOGRAM:
				h := metric.GetHistogram()
				lines = append(lines, fmt.Sprintf("%s count=%d sum=%g", name, h.GetSampleCount(), h.GetSampleSum()))
			}
		}
	}
	sort.Strings(lines)

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func labelString(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = fmt.Sprintf("%s=%q", l.GetName(), l.GetValue())
	}
	return "{" + strings.Join(parts, ",") + "}"
}
