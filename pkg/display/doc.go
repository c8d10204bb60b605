// Package display renders the event model on a terminal.
//
// A Printer is attached to a reports.Model as a sink and prints each event
// when it first appears, coloured with the 16-colour palette (bright
// colours are indices 8-15). A Filter hides events whose category is
// disabled in the registry or whose text does not match the filter text.
package display
