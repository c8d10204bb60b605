package manager

import (
	"github.com/cuemby/reportwatch/pkg/events"
	"github.com/cuemby/reportwatch/pkg/metrics"
	"github.com/cuemby/reportwatch/pkg/reports"
	"github.com/cuemby/reportwatch/pkg/types"
)

// categoryEvents republishes registry changes on the broker
type categoryEvents struct {
	broker *events.Broker
}

func (c *categoryEvents) CategoryAdded(_ int, cat types.Category) {
	c.broker.Publish(&events.Event{Type: events.EventCategoryAdded, Category: cat, Message: cat.Name})
}

func (c *categoryEvents) CategoryUpdated(_ int, cat types.Category) {
	c.broker.Publish(&events.Event{Type: events.EventCategoryUpdated, Category: cat, Message: cat.Name})
}

func (c *categoryEvents) MembershipChanged() {}

// rowMetrics counts model row changes
type rowMetrics struct{}

var _ reports.Sink = rowMetrics{}

func (rowMetrics) RowsInserted(first, last int) {
	metrics.RowsInserted.Add(float64(last - first + 1))
}

func (rowMetrics) RowsRemoved(first, last int) {
	metrics.RowsRemoved.Add(float64(last - first + 1))
}

func (rowMetrics) RowsChanged(int, int, reports.Field) {}

func (rowMetrics) Reset() {}
