package manager

import (
	"context"

	"github.com/cuemby/reportwatch/pkg/config"
	"github.com/cuemby/reportwatch/pkg/events"
	"github.com/cuemby/reportwatch/pkg/log"
	"github.com/cuemby/reportwatch/pkg/metrics"
	"github.com/cuemby/reportwatch/pkg/poll"
	"github.com/cuemby/reportwatch/pkg/rpc"
	"github.com/cuemby/reportwatch/pkg/types"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Everything in this file runs on the manager loop.

func (m *Manager) setState(s types.ConnectionState) {
	m.mu.Lock()
	if m.state == s {
		m.mu.Unlock()
		return
	}
	m.state = s
	m.mu.Unlock()

	m.slog.Info().Str("state", s.String()).Msg("Connection state changed")
	metrics.ConnectionState.Set(float64(s))
	metrics.UpdateComponent("session", s == types.StateConnected, s.String())
	m.broker.Publish(&events.Event{
		Type:    events.EventStateChanged,
		State:   s,
		Message: s.String(),
	})
}

func (m *Manager) currentState() types.ConnectionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) fail(kind ErrorKind, message string, err error) {
	e := &Error{Kind: kind, Message: message, Err: err}
	m.slog.Error().Err(err).Str("kind", kind.String()).Msg(message)
	metrics.SessionErrors.WithLabelValues(kind.String()).Inc()
	m.broker.Publish(&events.Event{
		Type:    events.EventError,
		Message: message,
		Err:     e,
	})
}

func (m *Manager) connect(addr string) {
	switch m.currentState() {
	case types.StateConnecting:
		m.slog.Debug().Str("addr", addr).Msg("Connection attempt in progress, ignoring connect")
	case types.StateConnected:
		m.pending = addr
		m.hasPending = true
		if !m.closing {
			m.closing = true
			m.slog.Info().Str("addr", addr).Msg("Reconnecting")
			m.transport.Disconnect()
		}
	default:
		m.startConnect(addr)
	}
}

func (m *Manager) startConnect(addr string) {
	attempt := m.attempt.Add(1)
	id := uuid.NewString()

	m.mu.Lock()
	m.sessionID = id
	m.versions = types.Versions{}
	m.mu.Unlock()
	m.slog = log.WithSessionID(m.logger, id)
	m.transportUp = false

	m.slog.Info().Str("addr", addr).Msg("Connecting")
	m.setState(types.StateConnecting)

	ctx := m.ctx
	go func() {
		// Each step checks that the attempt is still current before the
		// next one; an abandoned attempt closes what it opened.
		stale := func() bool {
			if m.attempt.Load() == attempt {
				return false
			}
			m.post(func() { m.abandon(attempt) })
			return true
		}

		if err := m.transport.Connect(ctx, addr); err != nil {
			m.post(func() { m.handshakeFailed(attempt, TransportFailure, msgConnectionFailed, err) })
			return
		}
		if stale() {
			return
		}

		handles, err := m.transport.Bind(ctx, procedures...)
		if err != nil {
			m.post(func() { m.handshakeFailed(attempt, BindingFailure, msgBindFailed, err) })
			return
		}
		if stale() {
			return
		}

		versions, err := m.queryVersions(ctx, handles)
		if err != nil {
			m.post(func() { m.handshakeFailed(attempt, HandshakeFailure, msgVersionsFailed, err) })
			return
		}

		m.post(func() { m.connected(attempt, handles, versions) })
	}()
}

// queryVersions asks for both versions concurrently
func (m *Manager) queryVersions(ctx context.Context, handles []rpc.Handle) (types.Versions, error) {
	var v types.Versions
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := rpc.CallString(ctx, m.transport, handles[handleVersion])
		v.Server = s
		return err
	})
	g.Go(func() error {
		s, err := rpc.CallString(ctx, m.transport, handles[handleGameVersion])
		v.Game = s
		return err
	})
	return v, g.Wait()
}

func (m *Manager) current(attempt uint64, want types.ConnectionState) bool {
	return attempt == m.attempt.Load() && m.currentState() == want
}

// abandon closes a connection opened by an attempt that is no longer current,
// unless a newer attempt or session now owns the transport.
func (m *Manager) abandon(attempt uint64) {
	if attempt == m.attempt.Load() || m.currentState() != types.StateDisconnected {
		return
	}
	m.slog.Debug().Uint64("attempt", attempt).Msg("Closing connection of abandoned attempt")
	m.transport.Disconnect()
}

func (m *Manager) handshakeFailed(attempt uint64, kind ErrorKind, message string, err error) {
	if !m.current(attempt, types.StateConnecting) {
		m.abandon(attempt)
		return
	}
	m.attempt.Add(1)
	metrics.ConnectAttempts.WithLabelValues("failure").Inc()
	m.fail(kind, message, err)
	m.transport.Disconnect()
	m.setState(types.StateDisconnected)
}

func (m *Manager) connected(attempt uint64, handles []rpc.Handle, versions types.Versions) {
	if !m.current(attempt, types.StateConnecting) {
		m.abandon(attempt)
		return
	}
	m.handles = handles

	m.mu.Lock()
	m.versions = versions
	m.mu.Unlock()

	metrics.ConnectAttempts.WithLabelValues("success").Inc()
	m.slog.Info().
		Str("server_version", versions.Server).
		Str("game_version", versions.Game).
		Msg("Connected")
	m.setState(types.StateConnected)
	m.update()
}

func (m *Manager) disconnect() {
	m.hasPending = false
	m.pending = ""

	if m.currentState() == types.StateConnecting {
		// Drop the handshake in flight.
		m.attempt.Add(1)
		m.transport.Disconnect()
		m.setState(types.StateDisconnected)
		return
	}
	m.transport.Disconnect()
}

func (m *Manager) onTransportEvent(ev rpc.Event) {
	switch ev.Type {
	case rpc.EventConnectionChanged:
		connected := ev.Connected
		m.post(func() { m.connectionChanged(connected) })
	case rpc.EventNotification:
		m.post(func() {
			m.slog.Debug().Int("color", ev.Color).Str("text", ev.Text).Msg("Server notification")
			m.broker.Publish(&events.Event{
				Type:    events.EventNotification,
				Color:   ev.Color,
				Message: ev.Text,
			})
		})
	}
}

func (m *Manager) connectionChanged(connected bool) {
	if connected {
		m.transportUp = true
		return
	}

	wasUp := m.transportUp
	m.transportUp = false
	m.closing = false

	switch m.currentState() {
	case types.StateConnecting:
		if !wasUp {
			// Not the connection being negotiated.
			return
		}
		// Lost between connect and the end of the handshake.
		metrics.ConnectAttempts.WithLabelValues("failure").Inc()
		m.fail(TransportFailure, msgConnectionFailed, rpc.ErrNotConnected)
	case types.StateConnected:
		m.slog.Info().Msg("Disconnected")
	}

	m.attempt.Add(1)
	m.poller.Stop()
	m.handles = nil
	m.fetching = false
	m.refetch = false
	m.model.Clear()
	m.syncStats()
	m.setState(types.StateDisconnected)

	if m.hasPending {
		addr := m.pending
		m.hasPending = false
		m.pending = ""
		m.startConnect(addr)
	}
}

func (m *Manager) update() {
	if m.currentState() != types.StateConnected {
		return
	}
	if m.fetching {
		m.refetch = true
		return
	}
	m.fetching = true

	source := m.settings.Source()
	h := m.handles[handleAnnouncements]
	if source == types.SourceReports {
		h = m.handles[handleReports]
	}

	attempt := m.attempt.Load()
	ctx := m.ctx
	go func() {
		timer := metrics.NewTimer()
		list, err := rpc.CallReportList(ctx, m.transport, h)
		timer.ObserveDurationVec(metrics.FetchDuration, string(source))
		m.post(func() { m.fetched(attempt, source, list, err) })
	}()
}

func (m *Manager) fetched(attempt uint64, source types.Source, list []types.Report, err error) {
	if !m.current(attempt, types.StateConnected) {
		return
	}
	m.fetching = false

	if err != nil {
		metrics.FetchesTotal.WithLabelValues(string(source), "error").Inc()
		m.fail(FetchFailure, msgFetchFailed, err)
	} else {
		metrics.FetchesTotal.WithLabelValues(string(source), "ok").Inc()
		m.model.Update(list)
		m.syncStats()
		m.slog.Debug().Str("source", string(source)).Int("events", len(list)).Msg("Fetched")
	}

	if m.refetch {
		m.refetch = false
		m.update()
		return
	}
	m.poller.Arm()
}

func (m *Manager) syncStats() {
	n := m.model.Len()
	m.mu.Lock()
	m.events = n
	m.mu.Unlock()
}

// onSettingChanged is called by Settings on the goroutine that changed it
func (m *Manager) onSettingChanged(k config.Key) {
	m.post(func() {
		switch k {
		case config.KeySource:
			m.slog.Info().Str("source", string(m.settings.Source())).Msg("Source changed")
			m.update()
		case config.KeyInterval:
			m.poller.SetInterval(poll.IntervalFromSeconds(m.settings.Interval()))
		case config.KeyAutoRefresh:
			m.poller.SetEnabled(m.settings.AutoRefresh())
		}
	})
}
