package config

import (
	"slices"
	"sync"

	"github.com/cuemby/reportwatch/pkg/types"
)

// Key names a live setting
type Key int

const (
	KeySource Key = iota
	KeyInterval
	KeyAutoRefresh
)

func (k Key) String() string {
	switch k {
	case KeySource:
		return "source"
	case KeyInterval:
		return "auto_refresh.interval"
	case KeyAutoRefresh:
		return "auto_refresh.enabled"
	default:
		return "unknown"
	}
}

// Settings holds the values that can change while a session runs.
// Subscribers are called after a value changes, outside the lock, and never
// when a value is set to what it already was.
type Settings struct {
	mu          sync.RWMutex
	source      types.Source
	interval    float64
	autoRefresh bool
	subscribers []func(Key)
}

// NewSettings creates live settings seeded from cfg
func NewSettings(cfg *Config) *Settings {
	return &Settings{
		source:      cfg.Source,
		interval:    cfg.AutoRefresh.Interval,
		autoRefresh: cfg.AutoRefresh.Enabled,
	}
}

// Subscribe registers fn for change notifications
func (s *Settings) Subscribe(fn func(Key)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Settings) notify(k Key) {
	s.mu.RLock()
	subs := slices.Clone(s.subscribers)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn(k)
	}
}

// Source returns the selected remote list
func (s *Settings) Source() types.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// SetSource selects the remote list
func (s *Settings) SetSource(source types.Source) {
	s.mu.Lock()
	changed := s.source != source
	s.source = source
	s.mu.Unlock()
	if changed {
		s.notify(KeySource)
	}
}

// Interval returns the poll interval in seconds
func (s *Settings) Interval() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.interval
}

// SetInterval sets the poll interval in seconds
func (s *Settings) SetInterval(seconds float64) {
	s.mu.Lock()
	changed := s.interval != seconds
	s.interval = seconds
	s.mu.Unlock()
	if changed {
		s.notify(KeyInterval)
	}
}

// AutoRefresh reports whether periodic fetching is enabled
func (s *Settings) AutoRefresh() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.autoRefresh
}

// SetAutoRefresh enables or disables periodic fetching
func (s *Settings) SetAutoRefresh(enabled bool) {
	s.mu.Lock()
	changed := s.autoRefresh != enabled
	s.autoRefresh = enabled
	s.mu.Unlock()
	if changed {
		s.notify(KeyAutoRefresh)
	}
}
