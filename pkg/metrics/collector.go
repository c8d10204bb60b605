package metrics

import (
	"strconv"
	"time"
)

// Stats is a point-in-time view of a viewer session
type Stats struct {
	State      int
	Events     int
	Categories int
	Enabled    int
}

// StatsSource provides Stats to a Collector
type StatsSource interface {
	Stats() Stats
}

// DefaultCollectInterval is how often a Collector samples its source
const DefaultCollectInterval = 15 * time.Second

// Collector periodically copies a session's Stats into gauges
type Collector struct {
	source   StatsSource
	interval time.Duration
	stopCh   chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(source StatsSource, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = DefaultCollectInterval
	}
	return &Collector{
		source:   source,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		// Collect immediately on start
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	s := c.source.Stats()
	ConnectionState.Set(float64(s.State))
	SnapshotSize.Set(float64(s.Events))
	CategoriesTotal.WithLabelValues(strconv.FormatBool(true)).Set(float64(s.Enabled))
	CategoriesTotal.WithLabelValues(strconv.FormatBool(false)).Set(float64(s.Categories - s.Enabled))
}
