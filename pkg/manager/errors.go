package manager

import "fmt"

// ErrorKind classifies session failures
type ErrorKind int

const (
	// TransportFailure: the connection could not be opened or was lost
	// during the handshake
	TransportFailure ErrorKind = iota + 1
	// BindingFailure: a required remote procedure is unknown to the server
	BindingFailure
	// HandshakeFailure: the version queries failed
	HandshakeFailure
	// FetchFailure: fetching the event list failed; the session stays up
	FetchFailure
)

func (k ErrorKind) String() string {
	switch k {
	case TransportFailure:
		return "transport"
	case BindingFailure:
		return "binding"
	case HandshakeFailure:
		return "handshake"
	case FetchFailure:
		return "fetch"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is a session failure as reported to the user
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// User-facing messages
const (
	msgConnectionFailed = "connection failed"
	msgBindFailed       = "failed to bind functions"
	msgVersionsFailed   = "failed to get versions"
	msgFetchFailed      = "failed to get reports"
)
