/*
Package log provides structured logging for reportwatch using zerolog.

A single package-level Logger is configured once at startup with Init and
shared by every package. Components derive child loggers with WithComponent,
and the connection manager adds a session_id field per connection attempt so
that a handshake and the polls that follow it can be correlated.

# Usage

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: false,
	})

	logger := log.WithComponent("manager")
	logger.Info().Str("addr", "localhost:5000").Msg("Connecting")

Until Init is called the Logger discards everything, which keeps package
tests quiet.

Console output goes to stderr so that the terminal printer in pkg/display can
own stdout.
*/
package log
