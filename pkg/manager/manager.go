package manager

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/cuemby/reportwatch/pkg/config"
	"github.com/cuemby/reportwatch/pkg/events"
	"github.com/cuemby/reportwatch/pkg/log"
	"github.com/cuemby/reportwatch/pkg/metrics"
	"github.com/cuemby/reportwatch/pkg/poll"
	"github.com/cuemby/reportwatch/pkg/registry"
	"github.com/cuemby/reportwatch/pkg/reports"
	"github.com/cuemby/reportwatch/pkg/rpc"
	"github.com/cuemby/reportwatch/pkg/types"
	"github.com/rs/zerolog"
)

// procedures bound by every session, in handle order
var procedures = []*rpc.Procedure{
	rpc.GetVersion,
	rpc.GetDFVersion,
	rpc.GetAnnouncements,
	rpc.GetReports,
}

const (
	handleVersion = iota
	handleGameVersion
	handleAnnouncements
	handleReports
)

// Config holds the collaborators of a Manager
type Config struct {
	Transport rpc.Transport
	// Settings defaults to config.Default values
	Settings *config.Settings
	// Registry defaults to an empty registry
	Registry *registry.Registry
	// Model defaults to a model feeding Registry
	Model *reports.Model
	// Broker receives state, error, category and notification events; may be nil
	Broker *events.Broker
}

// Manager drives a session with the remote server: it connects, binds the
// remote procedures, performs the version handshake and keeps the model in
// sync with the selected remote list.
//
// Every state change, continuation and model update runs on the manager's
// own goroutine. Public methods only post work to it and return immediately.
type Manager struct {
	transport rpc.Transport
	settings  *config.Settings
	registry  *registry.Registry
	model     *reports.Model
	broker    *events.Broker
	poller    *poll.Scheduler
	logger    zerolog.Logger

	mailbox  *mailbox
	ctx      context.Context
	cancel   context.CancelFunc
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once

	// attempt is written by the loop only; the handshake goroutine reads it
	// to stop early once abandoned.
	attempt atomic.Uint64

	// Loop-owned
	handles     []rpc.Handle
	pending     string
	hasPending  bool
	closing     bool
	fetching    bool
	refetch     bool
	transportUp bool
	slog        zerolog.Logger

	// Shared with accessors
	mu        sync.RWMutex
	state     types.ConnectionState
	versions  types.Versions
	sessionID string
	events    int
	started   bool
}

// NewManager creates a disconnected manager. Call Start to run it.
func NewManager(cfg *Config) (*Manager, error) {
	if cfg.Transport == nil {
		return nil, fmt.Errorf("transport is required")
	}

	settings := cfg.Settings
	if settings == nil {
		settings = config.NewSettings(config.Default())
	}
	reg := cfg.Registry
	if reg == nil {
		reg = registry.New()
	}
	model := cfg.Model
	if model == nil {
		model = reports.NewModel(reg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	logger := log.WithComponent("manager")
	m := &Manager{
		transport: cfg.Transport,
		settings:  settings,
		registry:  reg,
		model:     model,
		broker:    cfg.Broker,
		logger:    logger,
		slog:      logger,
		mailbox:   newMailbox(),
		ctx:       ctx,
		cancel:    cancel,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	m.poller = poll.New(poll.IntervalFromSeconds(settings.Interval()), m.Update)

	model.AddSink(rowMetrics{})
	if cfg.Broker != nil {
		reg.Observe(&categoryEvents{broker: cfg.Broker})
	}
	cfg.Transport.SetHandler(m.onTransportEvent)
	settings.Subscribe(m.onSettingChanged)

	metrics.RegisterComponent("session", false, types.StateDisconnected.String())
	return m, nil
}

// Start runs the manager loop and enables auto-refresh per the settings
func (m *Manager) Start() {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()

	go m.run()
	m.poller.SetEnabled(m.settings.AutoRefresh())
}

// Stop closes the connection and stops the manager loop. In-flight calls
// are cancelled and their results discarded.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		m.poller.SetEnabled(false)
		m.cancel()
		close(m.stopCh)

		m.mu.RLock()
		started := m.started
		m.mu.RUnlock()
		if started {
			<-m.doneCh
		}
		m.transport.Disconnect()
	})
}

func (m *Manager) run() {
	defer close(m.doneCh)
	for {
		select {
		case <-m.mailbox.notify:
			for _, fn := range m.mailbox.drain() {
				fn()
			}
		case <-m.stopCh:
			return
		}
	}
}

func (m *Manager) post(fn func()) {
	m.mailbox.post(fn)
}

// Connect opens a session with host:port. It is ignored while a connection
// attempt is in progress; while connected, the current session is closed
// first and the new attempt starts once it is down.
func (m *Manager) Connect(host string, port uint16) {
	addr := net.JoinHostPort(host, strconv.Itoa(int(port)))
	m.post(func() { m.connect(addr) })
}

// Disconnect closes the session
func (m *Manager) Disconnect() {
	m.post(m.disconnect)
}

// Update fetches the selected remote list now. It is a no-op unless
// connected.
func (m *Manager) Update() {
	m.post(m.update)
}

// State returns the connection state
func (m *Manager) State() types.ConnectionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Versions returns the versions reported by the server during the handshake
func (m *Manager) Versions() types.Versions {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.versions
}

// SessionID identifies the current or last connection attempt
func (m *Manager) SessionID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessionID
}

// Registry returns the category registry fed by the model
func (m *Manager) Registry() *registry.Registry {
	return m.registry
}

// Stats implements metrics.StatsSource
func (m *Manager) Stats() metrics.Stats {
	m.mu.RLock()
	stats := metrics.Stats{State: int(m.state), Events: m.events}
	m.mu.RUnlock()

	for _, c := range m.registry.Categories() {
		stats.Categories++
		if c.Enabled {
			stats.Enabled++
		}
	}
	return stats
}
