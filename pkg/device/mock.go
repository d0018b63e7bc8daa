package device

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/itohio/serialplot/pkg/config"
)

// Mock simulates a board streaming two channels for testing and development.
// It implements Port and prints one "v1=<a>,v2=<b>" line per sample period.
type Mock struct {
	cfg *config.MockConfig

	mu      sync.RWMutex
	timeout time.Duration

	ticker    *time.Ticker
	closed    chan struct{}
	closeOnce sync.Once

	// Only touched by the reading goroutine
	pending   []byte
	startTime time.Time
	count     int
}

// Ensure Mock implements Port.
var _ Port = (*Mock)(nil)

// NewMock creates a new simulated port.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		cfg = &config.Default().Mock
	}
	rate := cfg.SampleRate
	if rate <= 0 {
		rate = 200 * time.Millisecond
	}

	return &Mock{
		cfg:       cfg,
		timeout:   -1,
		ticker:    time.NewTicker(rate),
		closed:    make(chan struct{}),
		startTime: time.Now(),
	}
}

// MockOpener returns an Opener that ignores the port name and yields a new Mock.
func MockOpener(cfg *config.MockConfig) Opener {
	return func(name string, baudRate int) (Port, error) {
		return NewMock(cfg), nil
	}
}

// Read returns the remainder of the current line or waits for the next sample.
// A timed out read returns (0, nil) like a hardware port.
func (m *Mock) Read(p []byte) (int, error) {
	if len(m.pending) == 0 {
		m.mu.RLock()
		timeout := m.timeout
		m.mu.RUnlock()

		var expired <-chan time.Time
		if timeout >= 0 {
			timer := time.NewTimer(timeout)
			defer timer.Stop()
			expired = timer.C
		}

		select {
		case <-m.closed:
			return 0, io.ErrClosedPipe
		case now := <-m.ticker.C:
			m.pending = m.nextLine(now)
		case <-expired:
			return 0, nil
		}
	}

	n := copy(p, m.pending)
	m.pending = m.pending[n:]
	return n, nil
}

// SetReadTimeout sets the read timeout; negative values disable it.
func (m *Mock) SetReadTimeout(t time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = t
	return nil
}

// ResetInputBuffer is a no-op: nothing is generated before the first read.
func (m *Mock) ResetInputBuffer() error {
	return nil
}

// Close stops the simulation and unblocks a pending Read.
func (m *Mock) Close() error {
	m.closeOnce.Do(func() {
		m.ticker.Stop()
		close(m.closed)
	})
	return nil
}

// nextLine generates a single record.
func (m *Mock) nextLine(now time.Time) []byte {
	m.count++
	if m.cfg.MalformedEvery > 0 && m.count%m.cfg.MalformedEvery == 0 {
		return []byte("v1=,v2=?\r\n")
	}

	a, b := m.values(now.Sub(m.startTime))
	return fmt.Appendf(nil, "v1=%.3f,v2=%.3f\r\n", a, b)
}

// values returns both channel values at the given elapsed time.
// Channel 1 is a sine, channel 2 a cosine of the same period.
func (m *Mock) values(elapsed time.Duration) (float64, float64) {
	period := m.cfg.Period.Seconds()
	if period <= 0 {
		period = 1
	}
	phase := 2 * math.Pi * elapsed.Seconds() / period

	// Deterministic pseudo-noise so simulated runs are reproducible
	noise := (math.Sin(float64(elapsed.Nanoseconds())*0.001) +
		math.Cos(float64(elapsed.Nanoseconds())*0.0013)) *
		m.cfg.NoiseLevel * 0.5

	a := m.cfg.Offset + m.cfg.AmplitudeA*math.Sin(phase) + noise
	b := m.cfg.Offset + m.cfg.AmplitudeB*math.Cos(phase) - noise
	return a, b
}
