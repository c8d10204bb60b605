package types

import (
	"fmt"
	"strings"
)

// Report is one entry of a remote event list as the server sends it
type Report struct {
	ID     int32
	Time   int32 // tick of year
	Year   int32
	Text   string
	Type   string
	Color  int32 // 0-7
	Bright bool
	Repeat int32
}

// Event is the local record of a remote report
type Event struct {
	ID       int32
	Time     Time
	Text     string
	Category string
	Color    int // palette index, bright colours are offset by 8
	Repeat   int32
}

// NewEvent converts a remote report into a local event
func NewEvent(r Report) Event {
	color := int(r.Color)
	if r.Bright {
		color += 8
	}
	return Event{
		ID:       r.ID,
		Time:     Time(r.Time) + Time(r.Year)*TicksPerYear,
		Text:     r.Text,
		Category: r.Type,
		Color:    color,
		Repeat:   r.Repeat,
	}
}

// DisplayText returns the event text with its repeat count appended
func (e Event) DisplayText() string {
	if e.Repeat > 0 {
		return fmt.Sprintf("%s (×%d)", e.Text, e.Repeat+1)
	}
	return e.Text
}

// Category is a report type label with its display flag
type Category struct {
	Name    string
	Enabled bool
}

// ConnectionState is the state of the session with the remote server
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return fmt.Sprintf("ConnectionState(%d)", int(s))
	}
}

// Source selects which remote list is polled
type Source string

const (
	SourceAnnouncements Source = "announcements"
	SourceReports       Source = "reports"
)

// ParseSource parses a source name, case-insensitively
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceAnnouncements:
		return SourceAnnouncements, nil
	case SourceReports:
		return SourceReports, nil
	default:
		return "", fmt.Errorf("unknown source %q (want %q or %q)", s, SourceAnnouncements, SourceReports)
	}
}

// Versions holds the version strings returned by the handshake
type Versions struct {
	Server string
	Game   string
}
