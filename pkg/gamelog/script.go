package gamelog

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cuemby/reportwatch/pkg/types"
	"gopkg.in/yaml.v3"
)

// Script drives a Log with a fixed sequence of entries
type Script struct {
	// StartYear sets the clock of a fresh log
	StartYear int32 `yaml:"start_year"`
	// Step is the wall-clock delay between entries, e.g. "1s"
	Step string `yaml:"step"`
	// TicksPerStep advances the game clock before each entry
	TicksPerStep int64 `yaml:"ticks_per_step"`
	// Loop restarts from the first entry after the last
	Loop    bool    `yaml:"loop"`
	Entries []Entry `yaml:"entries"`

	step time.Duration
}

// LoadScript reads a YAML script from path
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript parses a YAML script
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if len(s.Entries) == 0 {
		return nil, fmt.Errorf("script has no entries")
	}
	if s.Step == "" {
		s.step = time.Second
	} else {
		d, err := time.ParseDuration(s.Step)
		if err != nil {
			return nil, fmt.Errorf("invalid step %q: %w", s.Step, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("step must be positive, got %s", d)
		}
		s.step = d
	}
	if s.TicksPerStep <= 0 {
		s.TicksPerStep = int64(types.TicksPerDay) / 2
	}
	return &s, nil
}

// StepDuration returns the parsed Step
func (s *Script) StepDuration() time.Duration {
	return s.step
}

// Play appends the script's entries to l, one per step, until ctx is done or
// the script ends. onAppend, if set, is called with every stored report.
func (s *Script) Play(ctx context.Context, l *Log, onAppend func(types.Report)) error {
	ticker := time.NewTicker(s.step)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Advance(types.Time(s.TicksPerStep))
			r := l.Append(s.Entries[i])
			if onAppend != nil {
				onAppend(r)
			}
			i++
			if i == len(s.Entries) {
				if !s.Loop {
					return nil
				}
				i = 0
			}
		}
	}
}

// DefaultScript is used by the simulation server when no script is given
const DefaultScript = `
start_year: 125
step: 2s
ticks_per_step: 600
loop: true
entries:
  - {text: "Spring has arrived!", type: SEASON_SPRING, color: 2, bright: true}
  - {text: "Some migrants have arrived.", type: MIGRANT_ARRIVAL, color: 7, bright: true, report: true}
  - {text: "You have struck native gold!", type: STRUCK_MINERAL, color: 6, bright: true, report: true}
  - {text: "The stray cat has given birth to a kitten.", type: BIRTH_ANIMAL, color: 3}
  - {text: "The stray cat has given birth to a kitten.", type: BIRTH_ANIMAL, color: 3}
  - {text: "A caravan from Asmelkol has arrived.", type: CARAVAN_ARRIVAL, color: 6, bright: true, report: true}
  - {text: "Urist McMiner has created a masterpiece!", type: MASTERPIECE_CRAFTED, color: 2, bright: true, report: true}
  - {text: "The cave has collapsed!", type: CAVE_COLLAPSE, color: 4, bright: true, report: true}
`
