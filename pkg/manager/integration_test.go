package manager

import (
	"net"
	"testing"

	"github.com/cuemby/reportwatch/pkg/api"
	"github.com/cuemby/reportwatch/pkg/client"
	"github.com/cuemby/reportwatch/pkg/config"
	"github.com/cuemby/reportwatch/pkg/gamelog"
	"github.com/cuemby/reportwatch/pkg/registry"
	"github.com/cuemby/reportwatch/pkg/reports"
	"github.com/cuemby/reportwatch/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink keeps the rows a display would show
type recordingSink struct {
	model *reports.Model
	rows  []types.Event
}

func (s *recordingSink) RowsInserted(first, last int) {
	inserted := make([]types.Event, 0, last-first+1)
	for i := first; i <= last; i++ {
		inserted = append(inserted, s.model.At(i))
	}
	s.rows = append(s.rows[:first], append(inserted, s.rows[first:]...)...)
}

func (s *recordingSink) RowsRemoved(first, last int) {
	s.rows = append(s.rows[:first], s.rows[last+1:]...)
}

func (s *recordingSink) RowsChanged(first, last int, _ reports.Field) {
	for i := first; i <= last; i++ {
		s.rows[i] = s.model.At(i)
	}
}

func (s *recordingSink) Reset() {
	s.rows = nil
}

func TestSessionAgainstSimulationServer(t *testing.T) {
	l := gamelog.New(gamelog.Options{Start: 125 * types.TicksPerYear})
	l.Append(gamelog.Entry{Text: "Spring has arrived!", Type: "SEASON_SPRING", Color: 2, Bright: true})
	l.Append(gamelog.Entry{Text: "A caravan has arrived.", Type: "CARAVAN_ARRIVAL", Report: true})

	srv := api.NewServer(l, api.Config{ServerVersion: "0.47.05-r1", GameVersion: "v0.47.05"})
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	reg := registry.New()
	model := reports.NewModel(reg)
	sink := &recordingSink{model: model}
	model.AddSink(sink)

	cfg := config.Default()
	cfg.AutoRefresh.Enabled = false
	settings := config.NewSettings(cfg)

	m, err := NewManager(&Config{
		Transport: client.NewClient(client.Options{}),
		Settings:  settings,
		Registry:  reg,
		Model:     model,
	})
	require.NoError(t, err)
	m.Start()
	defer m.Stop()

	port := uint16(lis.Addr().(*net.TCPAddr).Port)
	m.Connect("127.0.0.1", port)

	require.Eventually(t, func() bool { return m.Stats().Events == 2 }, waitFor, tick)
	assert.Equal(t, types.Versions{Server: "0.47.05-r1", Game: "v0.47.05"}, m.Versions())

	l.Append(gamelog.Entry{Text: "A caravan has arrived.", Type: "CARAVAN_ARRIVAL", Report: true})
	l.Append(gamelog.Entry{Text: "Cave-in!", Type: "CAVE_COLLAPSE", Color: 4, Bright: true, Report: true})
	m.Update()
	require.Eventually(t, func() bool { return m.Stats().Events == 3 }, waitFor, tick)

	settings.SetSource(types.SourceReports)
	require.Eventually(t, func() bool { return m.Stats().Events == 2 }, waitFor, tick)

	m.Disconnect()
	require.Eventually(t, func() bool { return m.State() == types.StateDisconnected }, waitFor, tick)
	assert.Equal(t, 0, m.Stats().Events)
	assert.Empty(t, sink.rows)
	assert.Equal(t, []string{"CARAVAN_ARRIVAL", "CAVE_COLLAPSE", "SEASON_SPRING"}, categoryNames(reg))
}

func categoryNames(reg *registry.Registry) []string {
	var names []string
	for _, c := range reg.Categories() {
		names = append(names, c.Name)
	}
	return names
}
