package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.IncReceived("url")
		m.IncDispatched("navigate")
		m.IncBuffered(true)
		m.IncDecodeFailure("malformed")
		m.IncActionFailure("refresh")
		m.SetViewsConnected(2)
		m.IncAnalysis("happy")
		m.IncDetectorError()
	})
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncReceived("url")
	m.IncReceived("url")
	m.IncBuffered(false)
	m.IncBuffered(true)
	m.SetViewsConnected(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TargetsReceived.WithLabelValues("url")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TargetsBuffered))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TargetsDropped))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ViewsConnected))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewTwiceOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
