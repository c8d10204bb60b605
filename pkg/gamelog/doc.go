// Package gamelog simulates the event log of a running game for the
// development server.
//
// The log keeps two lists, announcements and the subset flagged as reports,
// each bounded to a retention window so that old IDs drop off the front the
// way a live game's log does. A Script replays a YAML sequence of entries at
// a fixed pace.
package gamelog
