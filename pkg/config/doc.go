// Package config loads the viewer's YAML configuration file and holds the
// settings that may change while a session runs.
package config
