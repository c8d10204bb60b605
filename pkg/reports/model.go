package reports

import (
	"sort"

	"github.com/cuemby/reportwatch/pkg/types"
)

// Field hints which part of a row changed
type Field int

const (
	FieldAll Field = iota
	FieldRepeat
)

// Sink observes structural changes of the model. Ranges are inclusive row
// indices into the model.
type Sink interface {
	// RowsInserted is called after rows first..last have been inserted.
	RowsInserted(first, last int)
	// RowsRemoved is called before rows first..last are erased, so the rows
	// can still be read from the model.
	RowsRemoved(first, last int)
	// RowsChanged is called after rows first..last have been updated.
	RowsChanged(first, last int, hint Field)
	// Reset is called after the model has been emptied.
	Reset()
}

// CategorySet receives the category of every inserted event
type CategorySet interface {
	Add(name string, enabled bool)
}

// Model is the local, ordered snapshot of the remote event list.
//
// A Model is not safe for concurrent use; the manager owns it and mutates it
// from its own goroutine only. Sinks are called synchronously.
type Model struct {
	events     []types.Event
	categories CategorySet
	sinks      []Sink
}

// NewModel creates an empty model. categories may be nil.
func NewModel(categories CategorySet) *Model {
	return &Model{categories: categories}
}

// AddSink registers a sink
func (m *Model) AddSink(s Sink) {
	m.sinks = append(m.sinks, s)
}

// Len returns the number of events
func (m *Model) Len() int {
	return len(m.events)
}

// At returns the event at row i
func (m *Model) At(i int) types.Event {
	return m.events[i]
}

// Events returns a copy of the snapshot
func (m *Model) Events() []types.Event {
	out := make([]types.Event, len(m.events))
	copy(out, m.events)
	return out
}

// IndexOf returns the row of the event with id, or -1
func (m *Model) IndexOf(id int32) int {
	i := lowerBound(m.events, 0, id)
	if i < len(m.events) && m.events[i].ID == id {
		return i
	}
	return -1
}

// Update merges a freshly fetched list, sorted by ascending ID, into the
// snapshot. Unchanged rows are updated in place, rows missing from remote are
// removed and new rows are inserted, each as contiguous runs.
func (m *Model) Update(remote []types.Report) {
	l, r := 0, 0
	for {
		// Equal run: both cursors on the same IDs.
		start := l
		for l < len(m.events) && r < len(remote) && m.events[l].ID == remote[r].ID {
			m.events[l].Repeat = remote[r].Repeat
			l++
			r++
		}
		if l > start {
			m.emitChanged(start, l-1, FieldRepeat)
		}

		switch {
		case l == len(m.events) && r == len(remote):
			return

		case r < len(remote) && (l == len(m.events) || remote[r].ID < m.events[l].ID):
			end := len(remote)
			if l < len(m.events) {
				end = lowerBoundReports(remote, r, m.events[l].ID)
			}
			m.insert(l, remote[r:end])
			l += end - r
			r = end

		default:
			// r is exhausted or the local ID is smaller than the remote one.
			end := len(m.events)
			if r < len(remote) {
				end = lowerBound(m.events, l, remote[r].ID)
			}
			m.remove(l, end)
		}
	}
}

// Clear empties the snapshot
func (m *Model) Clear() {
	m.events = nil
	for _, s := range m.sinks {
		s.Reset()
	}
}

func (m *Model) insert(at int, block []types.Report) {
	n := len(block)
	m.events = append(m.events, make([]types.Event, n)...)
	copy(m.events[at+n:], m.events[at:len(m.events)-n])
	for i, rep := range block {
		ev := types.NewEvent(rep)
		m.events[at+i] = ev
		if m.categories != nil {
			m.categories.Add(ev.Category, true)
		}
	}
	for _, s := range m.sinks {
		s.RowsInserted(at, at+n-1)
	}
}

func (m *Model) remove(from, to int) {
	for _, s := range m.sinks {
		s.RowsRemoved(from, to-1)
	}
	m.events = append(m.events[:from], m.events[to:]...)
}

func (m *Model) emitChanged(first, last int, hint Field) {
	for _, s := range m.sinks {
		s.RowsChanged(first, last, hint)
	}
}

// lowerBound returns the first index >= from whose ID is not less than id
func lowerBound(events []types.Event, from int, id int32) int {
	return from + sort.Search(len(events)-from, func(i int) bool {
		return events[from+i].ID >= id
	})
}

func lowerBoundReports(reports []types.Report, from int, id int32) int {
	return from + sort.Search(len(reports)-from, func(i int) bool {
		return reports[from+i].ID >= id
	})
}
