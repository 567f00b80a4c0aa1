package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Counters(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()

	m.CounterScoresRecorded.WithLabelValues("Rxd", "true").Inc()
	m.CounterScoresRecorded.WithLabelValues("Rxd", "true").Inc()
	m.CounterWodsSaved.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterScoresRecorded.WithLabelValues("Rxd", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterWodsSaved))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewManager_SeparateRegistries(t *testing.T) {
	// each registry gets its own collectors, so two managers never collide
	assert.NotPanics(t, func() {
		NewTestManager()
		NewTestManager()
	})
}
