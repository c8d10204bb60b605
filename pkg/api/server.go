package api

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/cuemby/reportwatch/pkg/gamelog"
	"github.com/cuemby/reportwatch/pkg/log"
	"github.com/cuemby/reportwatch/pkg/metrics"
	"github.com/cuemby/reportwatch/pkg/rpc"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// notificationBuffer is the per-subscriber queue; lines beyond it are dropped
const notificationBuffer = 64

// Config configures the simulation server
type Config struct {
	ServerVersion string
	GameVersion   string
}

// Server serves a gamelog.Log over the Core and Reports services
type Server struct {
	cfg    Config
	log    *gamelog.Log
	grpc   *grpc.Server
	health *health.Server
	logger zerolog.Logger

	procs map[string]*rpc.Procedure
	ids   map[string]int32

	mu          sync.Mutex
	subscribers map[chan *structpb.Struct]struct{}
	done        chan struct{}
	stopOnce    sync.Once
}

// NewServer creates a new API server
func NewServer(l *gamelog.Log, cfg Config) *Server {
	logger := log.WithComponent("api")
	s := &Server{
		cfg:    cfg,
		log:    l,
		health: health.NewServer(),
		logger: logger,
		procs:  make(map[string]*rpc.Procedure),
		ids:    make(map[string]int32),
		grpc: grpc.NewServer(
			grpc.ChainUnaryInterceptor(LoggingInterceptor(logger), MetricsInterceptor()),
		),
		subscribers: make(map[chan *structpb.Struct]struct{}),
		done:        make(chan struct{}),
	}

	for i, p := range []*rpc.Procedure{
		rpc.BindMethod,
		rpc.GetVersion,
		rpc.GetDFVersion,
		rpc.GetAnnouncements,
		rpc.GetReports,
	} {
		s.procs[p.String()] = p
		s.ids[p.String()] = int32(i)
	}

	s.grpc.RegisterService(&coreServiceDesc, s)
	s.grpc.RegisterService(&reportsServiceDesc, s)
	healthpb.RegisterHealthServer(s.grpc, s.health)
	return s
}

// Start listens on addr and serves until Stop is called
func (s *Server) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %v", err)
	}
	s.logger.Info().Str("addr", lis.Addr().String()).Msg("gRPC API listening")
	return s.Serve(lis)
}

// Serve serves on an existing listener
func (s *Server) Serve(lis net.Listener) error {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	metrics.UpdateComponent("api", true, "")
	return s.grpc.Serve(lis)
}

// Stop closes notification streams and gracefully stops the gRPC server
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.health.Shutdown()
		metrics.UpdateComponent("api", false, "stopped")
		s.grpc.GracefulStop()
	})
}

// Notify sends a console line to every notification subscriber
func (s *Server) Notify(color int, text string) {
	msg := rpc.Notification(color, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- msg:
		default:
			s.logger.Warn().Msg("Notification subscriber is slow, dropping line")
		}
	}
}

// Subscribers returns the number of open notification streams
func (s *Server) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

func (s *Server) subscribe() chan *structpb.Struct {
	ch := make(chan *structpb.Struct, notificationBuffer)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan *structpb.Struct) {
	s.mu.Lock()
	delete(s.subscribers, ch)
	s.mu.Unlock()
}

// BindMethod resolves a procedure to its id
func (s *Server) BindMethod(ctx context.Context, req *structpb.Struct) (*wrapperspb.Int32Value, error) {
	p, err := rpc.ParseBindRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	known, ok := s.procs[p.String()]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "no such procedure: %s", p)
	}
	if known.Input != p.Input || known.Output != p.Output {
		return nil, status.Errorf(codes.InvalidArgument, "%s takes %s and returns %s", p, known.Input, known.Output)
	}
	return wrapperspb.Int32(s.ids[p.String()]), nil
}

// GetVersion returns the server version
func (s *Server) GetVersion(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String(s.cfg.ServerVersion), nil
}

// GetDFVersion returns the game version
func (s *Server) GetDFVersion(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String(s.cfg.GameVersion), nil
}

// GetAnnouncements returns every announcement held by the log
func (s *Server) GetAnnouncements(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	list := s.log.Announcements()
	metrics.LogEntries.WithLabelValues("announcements").Set(float64(len(list)))
	return rpc.EncodeReportList(list), nil
}

// GetReports returns every report held by the log
func (s *Server) GetReports(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	list := s.log.Reports()
	metrics.LogEntries.WithLabelValues("reports").Set(float64(len(list)))
	return rpc.EncodeReportList(list), nil
}

// Notifications streams console lines until the client goes away or the
// server stops
func (s *Server) Notifications(_ *emptypb.Empty, stream grpc.ServerStream) error {
	ch := s.subscribe()
	defer s.unsubscribe(ch)

	for {
		select {
		case <-stream.Context().Done():
			return nil
		case <-s.done:
			return nil
		case msg := <-ch:
			if err := stream.SendMsg(msg); err != nil {
				return err
			}
		}
	}
}
