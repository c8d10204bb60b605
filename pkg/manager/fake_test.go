package manager

import (
	"context"
	"sync"

	"github.com/cuemby/reportwatch/pkg/rpc"
	"github.com/cuemby/reportwatch/pkg/types"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// fakeTransport is a scripted rpc.Transport
type fakeTransport struct {
	mu      sync.Mutex
	handler rpc.Handler

	connected bool
	epoch     uint64

	connectErr error
	bindErr    error
	versionErr error
	fetchErr   error

	// connectGate, when set, holds Connect until closed or ctx is done
	connectGate chan struct{}
	// disconnectGate, when set, delays the disconnection event until closed
	disconnectGate chan struct{}

	announcements []types.Report
	reports       []types.Report

	connectAddrs []string
	disconnects  int
	calls        map[string]int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{calls: make(map[string]int)}
}

func (f *fakeTransport) SetHandler(h rpc.Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = h
}

func (f *fakeTransport) emit(ev rpc.Event) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h != nil {
		h(ev)
	}
}

func (f *fakeTransport) Connect(ctx context.Context, addr string) error {
	f.mu.Lock()
	f.connectAddrs = append(f.connectAddrs, addr)
	gate := f.connectGate
	err := f.connectErr
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.connected = true
	f.epoch++
	f.mu.Unlock()
	f.emit(rpc.Event{Type: rpc.EventConnectionChanged, Connected: true})
	return nil
}

func (f *fakeTransport) Bind(ctx context.Context, procs ...*rpc.Procedure) ([]rpc.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected {
		return nil, rpc.ErrNotConnected
	}
	if f.bindErr != nil {
		return nil, f.bindErr
	}
	handles := make([]rpc.Handle, len(procs))
	for i, p := range procs {
		handles[i] = rpc.Handle{Proc: p, ID: int32(i), Epoch: f.epoch}
	}
	return handles, nil
}

func (f *fakeTransport) Call(ctx context.Context, h rpc.Handle, req, resp proto.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected {
		return rpc.ErrNotConnected
	}
	if h.Epoch != f.epoch {
		return rpc.ErrNotBound
	}
	f.calls[h.Proc.Name]++

	var reply proto.Message
	switch h.Proc {
	case rpc.GetVersion:
		if f.versionErr != nil {
			return f.versionErr
		}
		reply = wrapperspb.String("server-1")
	case rpc.GetDFVersion:
		if f.versionErr != nil {
			return f.versionErr
		}
		reply = wrapperspb.String("game-1")
	case rpc.GetAnnouncements:
		if f.fetchErr != nil {
			return f.fetchErr
		}
		reply = rpc.EncodeReportList(f.announcements)
	case rpc.GetReports:
		if f.fetchErr != nil {
			return f.fetchErr
		}
		reply = rpc.EncodeReportList(f.reports)
	}
	proto.Merge(resp, reply)
	return nil
}

func (f *fakeTransport) Disconnect() {
	f.mu.Lock()
	f.disconnects++
	was := f.connected
	f.connected = false
	gate := f.disconnectGate
	f.mu.Unlock()

	if !was {
		return
	}
	if gate != nil {
		go func() {
			<-gate
			f.emit(rpc.Event{Type: rpc.EventConnectionChanged, Connected: false})
		}()
		return
	}
	f.emit(rpc.Event{Type: rpc.EventConnectionChanged, Connected: false})
}

// drop simulates the server going away
func (f *fakeTransport) drop() {
	f.mu.Lock()
	f.connected = false
	f.mu.Unlock()
	f.emit(rpc.Event{Type: rpc.EventConnectionChanged, Connected: false})
}

func (f *fakeTransport) set(fn func(f *fakeTransport)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeTransport) isConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeTransport) addrs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.connectAddrs...)
}

func (f *fakeTransport) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeTransport) disconnectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disconnects
}
