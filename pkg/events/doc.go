/*
Package events provides the in-memory broker that carries reportwatch's
application-level notifications.

The connection manager publishes connection.state and session.error events,
the registry bridge publishes category.added and category.updated, and server
log lines arrive as server.notification. Subscribers receive a buffered
channel; a subscriber that stops draining it loses events rather than
stalling the publisher.

Row-range notifications do not go through the broker. They are delivered
synchronously to a reports.Sink because observers must see them in order and
before the next merge runs.

# Usage

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	for ev := range sub {
		switch ev.Type {
		case events.EventStateChanged:
			fmt.Println("state:", ev.State)
		case events.EventError:
			fmt.Println("error:", ev.Message)
		}
	}
*/
package events
