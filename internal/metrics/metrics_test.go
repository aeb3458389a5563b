package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveFetch(t *testing.T) {
	m := New()

	m.ObserveFetch(DocumentIndex, 10*time.Millisecond, nil)
	m.ObserveFetch(DocumentDetails, time.Millisecond, nil)
	m.ObserveFetch(DocumentDetails, time.Millisecond, errors.New("timeout"))

	assert.InDelta(t, 1, testutil.ToFloat64(m.fetches.WithLabelValues(DocumentIndex, OutcomeSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.fetches.WithLabelValues(DocumentDetails, OutcomeSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.fetches.WithLabelValues(DocumentDetails, OutcomeFailure)), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(m.fetchDuration))
}

func TestObservePopulate(t *testing.T) {
	m := New()

	m.ObservePopulate(OutcomeSuccess, 12)
	m.SetInstalled(3)
	assert.InDelta(t, 12, testutil.ToFloat64(m.entries), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.installed), 0)

	t.Run("a new cycle resets installed matches", func(t *testing.T) {
		m.ObservePopulate(OutcomeFailure, 0)
		assert.InDelta(t, 0, testutil.ToFloat64(m.entries), 0)
		assert.InDelta(t, 0, testutil.ToFloat64(m.installed), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(m.populates.WithLabelValues(OutcomeFailure)), 0)
	})
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveFetch(DocumentTags, time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), "mpcatalog.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `mpcatalog_fetch_total{document="tags",outcome="success"} 1`)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveFetch(DocumentIndex, time.Second, nil)
		m.ObservePopulate(OutcomeSuccess, 1)
		m.SetInstalled(1)
	})
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "unused.prom")))
}
