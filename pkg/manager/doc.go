/*
Package manager implements the viewer's session with the remote server.

A Manager owns the connection state machine, the local event model and the
poll timer. It is driven by posting work to a single goroutine, so every
state transition, handshake continuation and model update happens in order
and without locks on the model.

# States

	             Connect                 handshake ok
	Disconnected ───────▶ Connecting ──────────────────▶ Connected
	     ▲                    │                              │
	     │  connect, bind or  │                              │ transport lost,
	     │  version failure   │                              │ Disconnect, or
	     └────────────────────┘◀─────────────────────────────┘ Connect elsewhere

Connect while Connecting is ignored. Connect while Connected closes the
current session first; the new attempt starts after Disconnected has been
published. If Connect is called again before that happens, the last address
wins.

# Handshake

A connection attempt runs off the loop and posts its outcome back:

 1. open the transport (failure: "connection failed")
 2. bind GetVersion, GetDFVersion, GetAnnouncements and GetReports in one
    batch (failure: "failed to bind functions")
 3. query both versions concurrently (failure: "failed to get versions")
 4. store the versions, enter Connected and fetch immediately

After a binding or version failure the transport is closed. Each outcome
carries the attempt number it belongs to; outcomes of an abandoned attempt
are dropped.

# Fetching

Update fetches the list selected by config.Settings.Source and merges it
into the reports.Model. A failed fetch publishes "failed to get reports" and
leaves the session up. When a fetch completes the poll timer is re-armed if
auto-refresh is on, so fetches never overlap. Changing the source triggers
a fetch; changing the interval or auto-refresh flag reprograms the timer.

# Events

State changes, errors (as *Error), category changes and server console
notifications are published on the events.Broker given in Config.
*/
package manager
