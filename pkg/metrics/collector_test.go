package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type staticStats Stats

func (s staticStats) Stats() Stats { return Stats(s) }

func TestCollectorCollect(t *testing.T) {
	c := NewCollector(staticStats{State: 2, Events: 42, Categories: 5, Enabled: 3}, time.Hour)
	c.collect()

	assert.Equal(t, 2.0, testutil.ToFloat64(ConnectionState))
	assert.Equal(t, 42.0, testutil.ToFloat64(SnapshotSize))
	assert.Equal(t, 3.0, testutil.ToFloat64(CategoriesTotal.WithLabelValues("true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(CategoriesTotal.WithLabelValues("false")))
}

func TestNewCollectorDefaultInterval(t *testing.T) {
	c := NewCollector(staticStats{}, 0)
	assert.Equal(t, DefaultCollectInterval, c.interval)

	c.Start()
	c.Stop()
}
