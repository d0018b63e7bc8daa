package sample

import "sync"

// Window is a fixed-capacity FIFO of the most recent samples.
// Push and Snapshot are safe to call from different goroutines.
type Window struct {
	mu    sync.RWMutex
	buf   [Depth]Sample
	start int // index of the oldest sample
	n     int
}

// NewWindow creates an empty window.
func NewWindow() *Window {
	return &Window{}
}

// Push appends s, evicting the oldest sample once Depth samples are held.
func (w *Window) Push(s Sample) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.n < Depth {
		w.buf[(w.start+w.n)%Depth] = s
		w.n++
		return
	}

	// Full: overwrite the oldest slot and advance the head
	w.buf[w.start] = s
	w.start = (w.start + 1) % Depth
}

// Snapshot returns a copy of the window contents, oldest first.
func (w *Window) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make(Snapshot, w.n)
	for i := range w.n {
		out[i] = w.buf[(w.start+i)%Depth]
	}
	return out
}

// Len returns the number of samples currently held.
func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.n
}
