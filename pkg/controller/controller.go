package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/itohio/serialplot/pkg/config"
	"github.com/itohio/serialplot/pkg/device"
	"github.com/itohio/serialplot/pkg/sample"
)

// DefaultTolerance is the number of consecutive malformed records that fail a connection.
const DefaultTolerance = 3

// ErrBusy is returned by Connect while a connection is being opened or is open.
var ErrBusy = errors.New("connection already active")

// Factory creates the device for a connection request.
type Factory func(port string, baudRate int) device.Device

// Controller owns the connection lifecycle and the session of the active connection.
//
// Disconnected -> Connecting -> Connected | Error
// Connected -> Error on an I/O error or too many consecutive malformed records
// Connected | Error -> Disconnected on Disconnect
type Controller struct {
	newDevice Factory
	tolerance int

	// op serializes transitions so callbacks observe them in order.
	// A channel instead of a mutex lets fail give up once its session is cancelled.
	op chan struct{}

	mu      sync.RWMutex
	state   State
	err     error
	session *Session
	dev     device.Device

	callbacks []func(Status)
	cbMu      sync.RWMutex
}

// New creates a disconnected Controller.
// tolerance <= 0 selects DefaultTolerance.
func New(factory Factory, tolerance int) *Controller {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Controller{
		newDevice: factory,
		tolerance: tolerance,
		state:     Disconnected,
		op:        make(chan struct{}, 1),
	}
}

func (c *Controller) lock()   { c.op <- struct{}{} }
func (c *Controller) unlock() { <-c.op }

// lockUnlessDone takes the op lock unless ctx is cancelled first.
func (c *Controller) lockUnlessDone(ctx context.Context) bool {
	select {
	case c.op <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

// OnStateChange registers a callback invoked after every transition.
// Callbacks run on the goroutine that caused the transition and must not
// call Connect or Disconnect synchronously.
func (c *Controller) OnStateChange(callback func(Status)) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	c.callbacks = append(c.callbacks, callback)
}

// SetTolerance changes the malformed record tolerance of later connections.
// n <= 0 selects DefaultTolerance.
func (c *Controller) SetTolerance(n int) {
	if n <= 0 {
		n = DefaultTolerance
	}
	c.lock()
	defer c.unlock()
	c.tolerance = n
}

// State returns the current connection state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Status returns the current state with port details and the last error.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.statusLocked()
}

// Session returns the session of the latest connection attempt, nil before the first one.
func (c *Controller) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// Snapshot returns the samples of the latest session.
// The last good samples stay available after an error or disconnect.
func (c *Controller) Snapshot() sample.Snapshot {
	s := c.Session()
	if s == nil {
		return sample.Snapshot{}
	}
	return s.Snapshot()
}

// Connect opens port at baudRate and starts collecting samples into a new session.
// Connecting from the Error state passes through Disconnected first.
// A Connect racing a Disconnect waits until the previous port is released.
func (c *Controller) Connect(port string, baudRate int) error {
	c.lock()
	defer c.unlock()

	switch c.State() {
	case Connecting, Connected:
		return ErrBusy
	case Error:
		c.transition(Disconnected, nil, nil)
	}

	if !config.ValidBaudRate(baudRate) {
		return fmt.Errorf("%w: %d", device.ErrUnsupportedBaudRate, baudRate)
	}

	session := newSession(port, baudRate)
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	c.transition(Connecting, nil, nil)

	dev := c.newDevice(port, baudRate)
	if err := dev.Connect(); err != nil {
		session.cancel()
		close(session.done)
		log.Printf("Failed to connect to %s: %v", port, err)
		c.transition(Error, err, nil)
		return err
	}

	c.transition(Connected, nil, dev)
	go c.consume(session, dev, dev.Readings(), c.tolerance)

	return nil
}

// Disconnect stops the active connection, if any, and waits until the port is released.
// No other transition runs until then.
func (c *Controller) Disconnect() error {
	c.lock()
	defer c.unlock()

	c.mu.Lock()
	if c.state == Disconnected {
		c.mu.Unlock()
		return nil
	}
	session, dev := c.session, c.dev
	c.mu.Unlock()

	// Cancelling first releases a consume goroutine waiting in fail
	if session != nil {
		session.cancel()
	}
	c.transition(Disconnected, nil, nil)

	var err error
	if dev != nil {
		err = dev.Close()
	}
	if session != nil {
		<-session.done
	}
	return err
}

// consume pushes samples of one session until its device stream ends.
func (c *Controller) consume(s *Session, dev device.Device, readings <-chan device.Reading, tolerance int) {
	defer close(s.done)

	malformed := 0
	for r := range readings {
		if s.ctx.Err() != nil {
			// Left Connected: drain without recording
			continue
		}

		if r.Err == nil {
			malformed = 0
			s.push(r.Sample)
			continue
		}

		if errors.Is(r.Err, device.ErrMalformedRecord) {
			malformed++
			if malformed < tolerance {
				continue
			}
			c.fail(s, dev, fmt.Errorf("%d consecutive malformed records, last: %w", malformed, r.Err))
			continue
		}

		c.fail(s, dev, r.Err)
	}

	// The stream ended on its own while still Connected
	c.fail(s, dev, fmt.Errorf("%w: %s: stream closed", device.ErrIO, s.Port))
}

// fail moves session s from Connected to Error and stops its device.
// It is a no-op if s is no longer the connected session.
func (c *Controller) fail(s *Session, dev device.Device, err error) {
	if !c.lockUnlessDone(s.ctx) {
		return
	}
	defer c.unlock()

	c.mu.RLock()
	current := c.session == s && c.state == Connected
	c.mu.RUnlock()
	if !current {
		return
	}

	s.cancel()
	log.Printf("Connection to %s failed: %v", s.Port, err)
	if cerr := dev.Close(); cerr != nil {
		log.Printf("Error closing %s: %v", s.Port, cerr)
	}
	c.transition(Error, err, nil)
}

// transition sets the state and notifies callbacks. Caller holds the op lock.
func (c *Controller) transition(state State, err error, dev device.Device) {
	c.mu.Lock()
	c.state = state
	c.err = err
	c.dev = dev
	status := c.statusLocked()
	c.mu.Unlock()

	c.notify(status)
}

func (c *Controller) statusLocked() Status {
	st := Status{State: c.state, Err: c.err}
	if c.session != nil {
		st.Port = c.session.Port
		st.BaudRate = c.session.BaudRate
	}
	return st
}

// notify invokes all registered callbacks without holding state locks.
func (c *Controller) notify(status Status) {
	c.cbMu.RLock()
	callbacks := make([]func(Status), len(c.callbacks))
	copy(callbacks, c.callbacks)
	c.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(status)
		}
	}
}
