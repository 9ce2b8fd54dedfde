package telemetry

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/redux/internal/clock"
	"github.com/roach88/redux/internal/redux"
	simtime "github.com/roach88/redux/internal/testutil"
)

type lampState struct{ On bool }

type lampAction interface {
	redux.EnablingCondition[lampState]
}

// toggle is enabled while the lamp is off; it enqueues a chime.
type toggle struct{}

func (toggle) IsEnabled(s lampState, _ clock.Timestamp) bool { return !s.On }
func (toggle) Kind() string                                 { return "toggle" }

type chime struct{ redux.AlwaysEnabled[lampState] }

func (chime) Kind() string { return "chime" }

func newLampStore(m *Metrics) *redux.Store[lampState, *simtime.SimulatedTime, lampAction] {
	start := time.Unix(0, 5_000_000)
	return redux.New[lampState, *simtime.SimulatedTime, lampAction](
		func(s *lampState, a redux.ActionWithMeta[lampAction], d *redux.Dispatcher[lampAction]) {
			if _, ok := a.Action().(toggle); ok {
				s.On = true
				d.Push(chime{})
			}
		},
		nil,
		simtime.NewSimulatedTime(100*time.Nanosecond),
		start,
		lampState{},
		redux.WithAnchor(clock.NewAnchor(clock.TimestampFromTime(start), clock.InstantOf(0))),
		redux.WithObserver(m),
		redux.WithLogger(Discard()),
	)
}

func TestMetrics_ObservesDispatch(t *testing.T) {
	m := NewMetrics("")
	store := newLampStore(m)

	require.True(t, store.Dispatch(toggle{}))
	require.False(t, store.Dispatch(toggle{}))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.dispatched.WithLabelValues("toggle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dispatched.WithLabelValues("chime")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("toggle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.maxDepth))
}

func TestMetrics_WriteSummary(t *testing.T) {
	m := NewMetrics("test")
	store := newLampStore(m)
	store.Dispatch(toggle{})

	var buf bytes.Buffer
	require.NoError(t, m.WriteSummary(&buf))

	out := buf.String()
	assert.Contains(t, out, `test_actions_dispatched_total{kind="chime"} 1`)
	assert.Contains(t, out, `test_actions_dispatched_total{kind="toggle"} 1`)
	assert.Contains(t, out, "test_dispatch_depth count=2 sum=1")
	assert.Contains(t, out, "test_action_id_gap_nanoseconds count=2 sum=200")
	assert.Contains(t, out, "test_dispatch_max_depth 1")
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	a, b := NewMetrics(""), NewMetrics("")
	newLampStore(a).Dispatch(toggle{})

	assert.Equal(t, 0.0, testutil.ToFloat64(b.dispatched.WithLabelValues("toggle")))
	assert.NotSame(t, a.Registry(), b.Registry())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, LoggerOptions{Level: "info", Format: "logfmt"})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("dispatch", "kind", "toggle")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "dispatch")
	assert.Contains(t, out, "kind=toggle")
}

func TestNewLogger_Errors(t *testing.T) {
	_, err := NewLogger(io.Discard, LoggerOptions{Level: "loud"})
	assert.Error(t, err)

	_, err = NewLogger(io.Discard, LoggerOptions{Format: "xml"})
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	assert.False(t, Discard().Enabled(context.Background(), slog.LevelError))
}
