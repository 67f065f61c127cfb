// Package reactor is a minimal stand-in for the cooperative single-thread
// event-loop host the specification treats as an external collaborator
// (see §5 of the design: "the outer ... cooperative single-thread event
// loop host; we specify only the capabilities we demand from it").
//
// The only capability Session needs from the host is "post last": schedule
// a callback to run after any work already queued for the current turn.
// Loop implements exactly that, grounded on the wake/drain shape of the
// epoll-based Poller this module's teacher used for socket readiness
// (transport/poller.go in the original tree) but replacing the raw epoll
// syscalls with a portable mutex-guarded slice, since a respwire Session must run over
// any net.Conn-like transport, not just epoll-pollable file descriptors.
package reactor

import "sync"

// Loop is a single-owner FIFO task queue. It is deliberately not a real
// multi-session reactor: one Loop belongs to exactly one Session, and
// Drain is called from that Session's own goroutine, so no callback ever
// runs concurrently with the code that scheduled it.
type Loop struct {
	mu      sync.Mutex
	pending []func()
}

// New returns an empty Loop.
func New() *Loop {
	return &Loop{}
}

// PostLast appends fn to the end of the queue. Callbacks run in the order
// they were posted, and a callback posted while Drain is running is itself
// drained before Drain returns, matching "runs at the end of the current
// turn, after any already-queued work".
func (l *Loop) PostLast(fn func()) {
	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()
}

// Pending reports whether any callback is currently queued.
func (l *Loop) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending) > 0
}

// Drain runs every queued callback, including ones callbacks themselves
// post, until the queue is empty.
func (l *Loop) Drain() {
	for {
		l.mu.Lock()
		if len(l.pending) == 0 {
			l.mu.Unlock()
			return
		}
		batch := l.pending
		l.pending = nil
		l.mu.Unlock()

		for _, fn := range batch {
			fn()
		}
	}
}
