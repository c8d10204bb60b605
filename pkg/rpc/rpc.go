package rpc

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"
)

var (
	// ErrNotConnected is returned when a call needs an open connection
	ErrNotConnected = errors.New("not connected")
	// ErrNotBound is returned for a handle that does not belong to the
	// current connection
	ErrNotBound = errors.New("procedure not bound")
	// ErrMalformed is returned when a reply cannot be decoded
	ErrMalformed = errors.New("malformed reply")
)

// Service names of the remote procedures
const (
	CoreService    = "dfproto.Core"
	ReportsService = "dfproto.Reports"
)

// Procedure describes a remote function: its plugin, name and the message
// types announced when binding it.
type Procedure struct {
	Plugin string
	Name   string
	Input  string
	Output string
}

// Service returns the gRPC service the procedure belongs to
func (p *Procedure) Service() string {
	if p.Plugin == "" {
		return CoreService
	}
	return "dfproto." + p.Plugin
}

// FullMethod returns the gRPC method path
func (p *Procedure) FullMethod() string {
	return "/" + p.Service() + "/" + p.Name
}

func (p *Procedure) String() string {
	if p.Plugin == "" {
		return p.Name
	}
	return p.Plugin + "::" + p.Name
}

// Procedures used by the viewer
var (
	BindMethod = &Procedure{
		Name:   "BindMethod",
		Input:  "google.protobuf.Struct",
		Output: "google.protobuf.Int32Value",
	}
	GetVersion = &Procedure{
		Name:   "GetVersion",
		Input:  "google.protobuf.Empty",
		Output: "google.protobuf.StringValue",
	}
	GetDFVersion = &Procedure{
		Name:   "GetDFVersion",
		Input:  "google.protobuf.Empty",
		Output: "google.protobuf.StringValue",
	}
	GetAnnouncements = &Procedure{
		Plugin: "Reports",
		Name:   "GetAnnouncements",
		Input:  "google.protobuf.Empty",
		Output: "google.protobuf.Struct",
	}
	GetReports = &Procedure{
		Plugin: "Reports",
		Name:   "GetReports",
		Input:  "google.protobuf.Empty",
		Output: "google.protobuf.Struct",
	}
)

// NotificationsMethod is the server-streaming method carrying server log lines
const NotificationsMethod = "/" + CoreService + "/Notifications"

// Handle is a procedure bound on a specific connection
type Handle struct {
	Proc  *Procedure
	ID    int32
	Epoch uint64
}

// Valid reports whether the handle was produced by a Bind call
func (h Handle) Valid() bool {
	return h.Proc != nil
}

// EventType distinguishes transport events
type EventType int

const (
	EventConnectionChanged EventType = iota
	EventNotification
)

// Event is emitted by a Transport outside of any call
type Event struct {
	Type      EventType
	Connected bool
	Color     int
	Text      string
}

// Handler receives transport events. It may be called from any goroutine,
// including from inside Disconnect, and must not block.
type Handler func(Event)

// Transport is an RPC session with the remote server
type Transport interface {
	// Connect opens the connection. Only one connection is open at a time.
	Connect(ctx context.Context, addr string) error
	// Bind resolves every procedure on the current connection, failing if
	// any of them is unknown to the server.
	Bind(ctx context.Context, procs ...*Procedure) ([]Handle, error)
	// Call invokes a bound procedure.
	Call(ctx context.Context, h Handle, req, resp proto.Message) error
	// Disconnect closes the connection. An EventConnectionChanged with
	// Connected=false is emitted if a connection was open.
	Disconnect()
	// SetHandler installs the event handler.
	SetHandler(h Handler)
}

// BindError lists the procedures a Bind call could not resolve
type BindError struct {
	Failed []*Procedure
	Err    error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("failed to bind %d procedure(s), first %s: %v", len(e.Failed), e.Failed[0], e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}
