package prommetrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg, "geosearch")
	require.NoError(t, err)

	c.RecordIndex(28, 1, time.Millisecond, nil)
	c.RecordTokenize("location", 20, true)
	c.RecordTokenize("location", 0, false)
	c.RecordQuery("nearby", 2, time.Millisecond, nil)

	assert.InDelta(t, 28, testutil.ToFloat64(c.docs), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.values.WithLabelValues("location", "indexed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.values.WithLabelValues("location", "skipped")), 0)
	assert.InDelta(t, 20, testutil.ToFloat64(c.terms.WithLabelValues("location")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(c.hits.WithLabelValues("nearby")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(c.opLatency))

	_, err = New(reg, "geosearch")
	assert.Error(t, err)
}
