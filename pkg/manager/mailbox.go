package manager

import "sync"

// mailbox is an unbounded FIFO of functions run by the manager loop.
// post never blocks, so transport callbacks can use it from any goroutine.
type mailbox struct {
	mu     sync.Mutex
	queue  []func()
	notify chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{notify: make(chan struct{}, 1)}
}

func (mb *mailbox) post(fn func()) {
	mb.mu.Lock()
	mb.queue = append(mb.queue, fn)
	mb.mu.Unlock()

	select {
	case mb.notify <- struct{}{}:
	default:
	}
}

func (mb *mailbox) drain() []func() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	q := mb.queue
	mb.queue = nil
	return q
}
