/*
Package client implements the rpc.Transport contract on gRPC.

Connect creates a grpc.ClientConn and blocks until it is ready, so that a
refused connection fails the handshake instead of being retried forever by
gRPC's reconnect logic. Once ready, two goroutines follow the connection:
one watches its connectivity state and reports the connection as lost the
moment it leaves READY, the other subscribes to the server's notification
stream and forwards each log line as an rpc.EventNotification.

Handles returned by Bind carry the epoch of the connection they were bound
on; after a reconnect they must be bound again.

# Usage

	c := client.NewClient(client.Options{})
	c.SetHandler(func(ev rpc.Event) { ... })

	if err := c.Connect(ctx, "localhost:5000"); err != nil {
		return err
	}
	defer c.Disconnect()

	handles, err := c.Bind(ctx, rpc.GetVersion, rpc.GetAnnouncements)
	if err != nil {
		return err
	}
	version, err := rpc.CallString(ctx, c, handles[0])

Every unary call is bounded by Options.CallTimeout (10s by default); the
transport, not the caller, owns timeouts.
*/
package client
