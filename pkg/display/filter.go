package display

import (
	"strings"
	"sync"

	"github.com/cuemby/reportwatch/pkg/registry"
	"github.com/cuemby/reportwatch/pkg/types"
)

// Filter decides which events are shown: the event's category must be
// enabled in the registry and its text must contain the filter text,
// ignoring case. Category decisions are cached until the registry signals a
// membership change.
type Filter struct {
	registry *registry.Registry

	mu    sync.Mutex
	text  string
	cache map[string]bool
	gen   uint64
}

var _ registry.Observer = (*Filter)(nil)

// NewFilter creates a filter observing reg
func NewFilter(reg *registry.Registry, text string) *Filter {
	f := &Filter{
		registry: reg,
		text:     strings.ToLower(text),
		cache:    make(map[string]bool),
	}
	reg.Observe(f)
	return f
}

// SetText replaces the text filter
func (f *Filter) SetText(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = strings.ToLower(text)
}

// Accept reports whether ev passes the filter
func (f *Filter) Accept(ev types.Event) bool {
	f.mu.Lock()
	enabled, ok := f.cache[ev.Category]
	text, gen := f.text, f.gen
	f.mu.Unlock()

	if !ok {
		enabled = f.registry.IsEnabled(ev.Category)
		f.mu.Lock()
		if f.gen == gen {
			f.cache[ev.Category] = enabled
		}
		f.mu.Unlock()
	}
	if !enabled {
		return false
	}
	return text == "" || strings.Contains(strings.ToLower(ev.Text), text)
}

func (f *Filter) CategoryAdded(int, types.Category) {}

func (f *Filter) CategoryUpdated(int, types.Category) {}

// MembershipChanged drops cached category decisions
func (f *Filter) MembershipChanged() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.cache)
	f.gen++
}
