package refresher

import (
	"context"
	"time"

	"github.com/itohio/serialplot/pkg/sample"
)

const (
	DefaultInterval      = 250 * time.Millisecond
	DefaultNoDataTimeout = time.Second
)

// Source is what the refresher reads on every tick.
// controller.Session satisfies it.
type Source interface {
	Snapshot() sample.Snapshot
	LastArrival() time.Time
}

// Frame is one rendered view of the window.
type Frame struct {
	Samples   sample.Snapshot
	Receiving bool // A sample arrived within the no-data timeout
	At        time.Time
}

// RenderFunc draws a frame. It is called from the refresher goroutine.
type RenderFunc func(Frame)

// Refresher periodically snapshots a Source and hands the result to a RenderFunc.
type Refresher struct {
	interval      time.Duration
	noDataTimeout time.Duration
	render        RenderFunc
}

// New creates a Refresher. Non-positive durations select the defaults.
func New(interval, noDataTimeout time.Duration, render RenderFunc) *Refresher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if noDataTimeout <= 0 {
		noDataTimeout = DefaultNoDataTimeout
	}
	return &Refresher{
		interval:      interval,
		noDataTimeout: noDataTimeout,
		render:        render,
	}
}

// Interval returns the refresh period.
func (r *Refresher) Interval() time.Duration {
	return r.interval
}

// Run renders src once immediately and then on every tick until ctx is cancelled.
// Nothing is rendered after ctx is done, so the last frame stays on screen.
func (r *Refresher) Run(ctx context.Context, src Source) {
	if ctx.Err() != nil {
		return
	}
	r.tick(src, time.Now())

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			// Cancellation wins over a tick that fired at the same time
			if ctx.Err() != nil {
				return
			}
			r.tick(src, now)
		}
	}
}

func (r *Refresher) tick(src Source, now time.Time) {
	if r.render == nil {
		return
	}
	r.render(r.Frame(src, now))
}

// Frame builds the frame for src as seen at now.
func (r *Refresher) Frame(src Source, now time.Time) Frame {
	last := src.LastArrival()
	return Frame{
		Samples:   src.Snapshot(),
		Receiving: !last.IsZero() && now.Sub(last) <= r.noDataTimeout,
		At:        now,
	}
}
