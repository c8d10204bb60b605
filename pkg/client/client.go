package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cuemby/reportwatch/pkg/log"
	"github.com/cuemby/reportwatch/pkg/rpc"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// DefaultCallTimeout bounds every unary call made by the client
const DefaultCallTimeout = 10 * time.Second

// Options configures a Client
type Options struct {
	// CallTimeout bounds each unary call; zero means DefaultCallTimeout.
	CallTimeout time.Duration
	// DialOptions are appended to the client's own options.
	DialOptions []grpc.DialOption
}

// Client implements rpc.Transport over a gRPC connection
type Client struct {
	opts   Options
	logger zerolog.Logger

	mu        sync.Mutex
	conn      *grpc.ClientConn
	cancel    context.CancelFunc
	connected bool
	epoch     uint64
	handler   rpc.Handler
}

var _ rpc.Transport = (*Client)(nil)

// NewClient creates a disconnected client
func NewClient(opts Options) *Client {
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	return &Client{
		opts:   opts,
		logger: log.WithComponent("client"),
	}
}

// SetHandler installs the transport event handler
func (c *Client) SetHandler(h rpc.Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = h
}

func (c *Client) emit(ev rpc.Event) {
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()
	if h != nil {
		h(ev)
	}
}

// Connect dials addr and waits until the connection is ready, ctx expires or
// Disconnect is called.
func (c *Client) Connect(ctx context.Context, addr string) error {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		// Idleness would look like a lost connection to the watcher.
		grpc.WithIdleTimeout(0),
	}, c.opts.DialOptions...)

	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return fmt.Errorf("already connected")
	}
	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to create connection: %w", err)
	}
	c.epoch++
	epoch := c.epoch
	sessionCtx, cancel := context.WithCancel(context.Background())
	c.conn = conn
	c.cancel = cancel
	c.mu.Unlock()

	dialCtx, stopDial := context.WithCancel(ctx)
	defer stopDial()
	stop := context.AfterFunc(sessionCtx, stopDial)
	defer stop()

	if err := waitReady(dialCtx, conn); err != nil {
		c.teardown(epoch)
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return fmt.Errorf("connection to %s closed while connecting: %w", addr, rpc.ErrNotConnected)
	}
	c.connected = true
	c.mu.Unlock()

	c.logger.Debug().Str("addr", addr).Msg("Connected")
	c.emit(rpc.Event{Type: rpc.EventConnectionChanged, Connected: true})

	go c.watch(sessionCtx, epoch, conn)
	go c.streamNotifications(sessionCtx, conn)
	return nil
}

func waitReady(ctx context.Context, conn *grpc.ClientConn) error {
	conn.Connect()
	for {
		state := conn.GetState()
		switch state {
		case connectivity.Ready:
			return nil
		case connectivity.TransientFailure, connectivity.Shutdown:
			return fmt.Errorf("connection state %s", state)
		}
		if !conn.WaitForStateChange(ctx, state) {
			return ctx.Err()
		}
	}
}

// watch reports the connection as lost as soon as it leaves the ready state
func (c *Client) watch(ctx context.Context, epoch uint64, conn *grpc.ClientConn) {
	state := conn.GetState()
	for state == connectivity.Ready {
		if !conn.WaitForStateChange(ctx, state) {
			return
		}
		state = conn.GetState()
	}
	if ctx.Err() != nil {
		return
	}
	c.logger.Warn().Str("state", state.String()).Msg("Connection lost")
	if c.teardown(epoch) {
		c.emit(rpc.Event{Type: rpc.EventConnectionChanged, Connected: false})
	}
}

func (c *Client) streamNotifications(ctx context.Context, conn *grpc.ClientConn) {
	desc := &grpc.StreamDesc{StreamName: "Notifications", ServerStreams: true}
	stream, err := conn.NewStream(ctx, desc, rpc.NotificationsMethod)
	if err != nil {
		c.logger.Debug().Err(err).Msg("Notification stream unavailable")
		return
	}
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil {
		c.logger.Debug().Err(err).Msg("Notification stream unavailable")
		return
	}
	if err := stream.CloseSend(); err != nil {
		return
	}
	for {
		msg := &structpb.Struct{}
		if err := stream.RecvMsg(msg); err != nil {
			c.logger.Debug().Err(err).Msg("Notification stream closed")
			return
		}
		color, text, err := rpc.ParseNotification(msg)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Ignoring malformed notification")
			continue
		}
		c.emit(rpc.Event{Type: rpc.EventNotification, Color: color, Text: text})
	}
}

// teardown closes the connection of the given epoch. It returns whether that
// connection had reached the ready state.
func (c *Client) teardown(epoch uint64) bool {
	c.mu.Lock()
	if c.epoch != epoch || c.conn == nil {
		c.mu.Unlock()
		return false
	}
	conn, cancel, wasConnected := c.conn, c.cancel, c.connected
	c.conn = nil
	c.cancel = nil
	c.connected = false
	c.epoch++
	c.mu.Unlock()

	cancel()
	if err := conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Close failed")
	}
	return wasConnected
}

// Disconnect closes the current connection, if any
func (c *Client) Disconnect() {
	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()

	if c.teardown(epoch) {
		c.logger.Debug().Msg("Disconnected")
		c.emit(rpc.Event{Type: rpc.EventConnectionChanged, Connected: false})
	}
}

func (c *Client) current() (*grpc.ClientConn, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || !c.connected {
		return nil, 0, rpc.ErrNotConnected
	}
	return c.conn, c.epoch, nil
}

// Bind resolves every procedure with the server's BindMethod call
func (c *Client) Bind(ctx context.Context, procs ...*rpc.Procedure) ([]rpc.Handle, error) {
	conn, epoch, err := c.current()
	if err != nil {
		return nil, err
	}

	handles := make([]rpc.Handle, len(procs))
	var failed []*rpc.Procedure
	var firstErr error
	for i, p := range procs {
		id, err := c.bindOne(ctx, conn, p)
		if err != nil {
			c.logger.Debug().Err(err).Str("procedure", p.String()).Msg("Bind failed")
			failed = append(failed, p)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		handles[i] = rpc.Handle{Proc: p, ID: id, Epoch: epoch}
	}
	if len(failed) > 0 {
		return nil, &rpc.BindError{Failed: failed, Err: firstErr}
	}
	return handles, nil
}

func (c *Client) bindOne(ctx context.Context, conn *grpc.ClientConn, p *rpc.Procedure) (int32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.CallTimeout)
	defer cancel()

	var reply wrapperspb.Int32Value
	if err := conn.Invoke(ctx, rpc.BindMethod.FullMethod(), rpc.BindRequest(p), &reply); err != nil {
		return 0, err
	}
	return reply.GetValue(), nil
}

// Call invokes a bound procedure
func (c *Client) Call(ctx context.Context, h rpc.Handle, req, resp proto.Message) error {
	conn, epoch, err := c.current()
	if err != nil {
		return err
	}
	if !h.Valid() {
		return rpc.ErrNotBound
	}
	if h.Epoch != epoch {
		return fmt.Errorf("%s: %w", h.Proc, rpc.ErrNotBound)
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.CallTimeout)
	defer cancel()

	if err := conn.Invoke(ctx, h.Proc.FullMethod(), req, resp); err != nil {
		return fmt.Errorf("%s: %w", h.Proc, err)
	}
	return nil
}
