package device

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/itohio/serialplot/pkg/config"
	"github.com/itohio/serialplot/pkg/sample"
)

const (
	// DefaultBaudRate matches the Arduino Serial.begin default used by most sketches.
	DefaultBaudRate = 9600
	// DefaultBufferSize is the default size for the readings channel buffer.
	DefaultBufferSize = 100
	// DefaultReadTimeout bounds how long a single read may block.
	DefaultReadTimeout = 2 * time.Second
)

// Reading is one result of the read loop: either a sample or an error.
// Errors wrapping ErrMalformedRecord are followed by further readings;
// errors wrapping ErrIO are the last value before the channel closes.
type Reading struct {
	Sample sample.Sample
	Err    error
}

// Option configures a Serial.
type Option func(*Serial)

// WithReadTimeout overrides DefaultReadTimeout. Non-positive values keep the default,
// reads are always bounded.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Serial) {
		if d > 0 {
			s.readTimeout = d
		}
	}
}

// WithOpener replaces the hardware opener, e.g. with MockOpener.
func WithOpener(open Opener) Option {
	return func(s *Serial) { s.open = open }
}

// Serial reads two-channel records from a serial port.
type Serial struct {
	port        string
	baudRate    int
	bufSize     int
	readTimeout time.Duration
	open        Opener

	conn      Port
	readings  chan Reading
	mu        sync.RWMutex
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce *sync.Once
	connected bool
}

// New creates a new Serial instance with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int, opts ...Option) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	s := &Serial{
		port:        port,
		baudRate:    baudRate,
		bufSize:     bufSize,
		readTimeout: DefaultReadTimeout,
		open:        OpenSerial,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Closed until the first Connect so Readings never blocks forever
	s.readings = make(chan Reading)
	close(s.readings)

	return s
}

// Connect opens the serial port and starts reading records.
func (s *Serial) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return ErrAlreadyConnected
	}

	if !config.ValidBaudRate(s.baudRate) {
		return fmt.Errorf("%w: %d", ErrUnsupportedBaudRate, s.baudRate)
	}

	conn, err := s.open(s.port, s.baudRate)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPortUnavailable, s.port, err)
	}

	if err := conn.SetReadTimeout(s.readTimeout); err != nil {
		conn.Close()
		return fmt.Errorf("%w: %s: set read timeout: %w", ErrPortUnavailable, s.port, err)
	}

	// Drop whatever the device printed before we were listening
	if err := conn.ResetInputBuffer(); err != nil {
		log.Printf("Failed to flush input buffer of %s: %v", s.port, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	readings := make(chan Reading, s.bufSize)
	done := make(chan struct{})

	s.conn = conn
	s.readings = readings
	s.cancel = cancel
	s.done = done
	s.closeOnce = &sync.Once{}
	s.connected = true

	go s.readRecords(ctx, conn, s.closeOnce, readings, done)

	return nil
}

// Close stops the read loop and releases the port.
func (s *Serial) Close() error {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return nil
	}
	s.connected = false
	cancel, conn, once, done := s.cancel, s.conn, s.closeOnce, s.done
	s.conn = nil
	s.mu.Unlock()

	cancel()
	// Closing the port unblocks a Read in progress
	release(conn, once, s.port)
	<-done

	return nil
}

// Readings returns the channel of the current connection.
// It is closed when the read loop exits.
func (s *Serial) Readings() <-chan Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readings
}

// IsConnected returns whether Connect succeeded and Close has not been called.
func (s *Serial) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Port returns the port name.
func (s *Serial) Port() string {
	return s.port
}

// BaudRate returns the configured speed.
func (s *Serial) BaudRate() int {
	return s.baudRate
}

// readRecords reads lines from the port until cancelled or the stream fails.
func (s *Serial) readRecords(ctx context.Context, conn Port, once *sync.Once, out chan<- Reading, done chan<- struct{}) {
	defer close(done)
	defer close(out)
	defer release(conn, once, s.port)

	reader := bufio.NewReader(timeoutReader{r: conn})
	var seq uint64

	for {
		if ctx.Err() != nil {
			return
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			s.send(ctx, out, Reading{Err: fmt.Errorf("%w: %s: %w", ErrIO, s.port, err)})
			return
		}

		line = strings.TrimSpace(strings.ToValidUTF8(line, ""))
		if line == "" {
			continue
		}

		a, b, err := ParseRecord(line)
		if err != nil {
			log.Printf("Failed to parse line '%s': %v", line, err)
			s.send(ctx, out, Reading{Err: err})
			continue
		}

		s.send(ctx, out, Reading{Sample: sample.Sample{
			Seq:       seq,
			Timestamp: time.Now(),
			A:         a,
			B:         b,
		}})
		seq++
	}
}

// send delivers r unless the connection is being closed.
func (s *Serial) send(ctx context.Context, out chan<- Reading, r Reading) {
	select {
	case out <- r:
	case <-ctx.Done():
	}
}

func release(conn Port, once *sync.Once, name string) {
	once.Do(func() {
		if err := conn.Close(); err != nil {
			log.Printf("Error closing serial port %s: %v", name, err)
		}
	})
}

// timeoutReader turns the (0, nil) result of a timed out serial read into ErrReadTimeout.
type timeoutReader struct {
	r io.Reader
}

func (t timeoutReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n == 0 && err == nil {
		return 0, ErrReadTimeout
	}
	return n, err
}
