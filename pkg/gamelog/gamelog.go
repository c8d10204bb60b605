package gamelog

import (
	"sync"

	"github.com/cuemby/reportwatch/pkg/types"
)

// DefaultRetention is the number of entries kept per list
const DefaultRetention = 1000

// Entry is a line appended to the log
type Entry struct {
	Text   string `yaml:"text"`
	Type   string `yaml:"type"`
	Color  int32  `yaml:"color"`
	Bright bool   `yaml:"bright"`
	// Report also adds the entry to the report list
	Report bool `yaml:"report"`
}

// Options configures a Log
type Options struct {
	Retention int
	Start     types.Time
}

// Log is a retention-bounded, append-only event log. Appending the same
// text and type as the newest entry bumps its repeat count instead of
// adding a new entry.
type Log struct {
	mu            sync.RWMutex
	retention     int
	now           types.Time
	nextID        int32
	announcements []types.Report
	reports       []types.Report
}

// New creates an empty log
func New(opts Options) *Log {
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	return &Log{
		retention: opts.Retention,
		now:       opts.Start,
	}
}

// Append records an entry at the current time and returns the stored report
func (l *Log) Append(e Entry) types.Report {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n := len(l.announcements); n > 0 {
		last := &l.announcements[n-1]
		if last.Text == e.Text && last.Type == e.Type {
			last.Repeat++
			if m := len(l.reports); m > 0 && l.reports[m-1].ID == last.ID {
				l.reports[m-1].Repeat = last.Repeat
			}
			return *last
		}
	}

	r := types.Report{
		ID:     l.nextID,
		Time:   int32(l.now % types.TicksPerYear),
		Year:   int32(l.now / types.TicksPerYear),
		Text:   e.Text,
		Type:   e.Type,
		Color:  e.Color & 7,
		Bright: e.Bright,
	}
	l.nextID++

	l.announcements = trim(append(l.announcements, r), l.retention)
	if e.Report {
		l.reports = trim(append(l.reports, r), l.retention)
	}
	return r
}

func trim(list []types.Report, retention int) []types.Report {
	if over := len(list) - retention; over > 0 {
		return append(list[:0], list[over:]...)
	}
	return list
}

// Advance moves the clock forward
func (l *Log) Advance(ticks types.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now += ticks
}

// Now returns the current time
func (l *Log) Now() types.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.now
}

// Announcements returns a copy of the announcement list, oldest first
func (l *Log) Announcements() []types.Report {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]types.Report(nil), l.announcements...)
}

// Reports returns a copy of the report list, oldest first
func (l *Log) Reports() []types.Report {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]types.Report(nil), l.reports...)
}
