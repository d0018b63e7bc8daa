package controller

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/itohio/serialplot/pkg/sample"
)

// Session holds the state of one connection attempt: its window of samples
// and a context that is cancelled when the controller leaves Connected.
// It is handed to the refresher instead of sharing controller globals.
type Session struct {
	Port     string
	BaudRate int

	window *sample.Window
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{} // Closed when the consume goroutine exits

	lastArrival atomic.Int64 // UnixNano of the newest sample, 0 if none
}

func newSession(port string, baudRate int) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		Port:     port,
		BaudRate: baudRate,
		window:   sample.NewWindow(),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Context is cancelled once the session stops being Connected.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Snapshot returns the last Depth samples of the session.
func (s *Session) Snapshot() sample.Snapshot {
	return s.window.Snapshot()
}

// LastArrival returns when the newest sample was read, zero if none was.
func (s *Session) LastArrival() time.Time {
	ns := s.lastArrival.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

func (s *Session) push(smp sample.Sample) {
	s.window.Push(smp)
	at := smp.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	s.lastArrival.Store(at.UnixNano())
}
