package sample

import (
	"time"
)

// Depth is the number of most recent samples kept for display.
const Depth = 10

// Channel selects one of the two data streams carried by each record.
type Channel int

const (
	ChannelA Channel = iota
	ChannelB
)

// Channels lists both channels in display order.
var Channels = []Channel{ChannelA, ChannelB}

// String returns the display label of the channel.
func (c Channel) String() string {
	switch c {
	case ChannelA:
		return "Channel 1"
	case ChannelB:
		return "Channel 2"
	default:
		return "Channel ?"
	}
}

// Sample represents one parsed record from the device.
type Sample struct {
	Seq       uint64    // Arrival order within a connection, starting at 0
	Timestamp time.Time // Host time the record was read
	A         float64   // Channel 1 value
	B         float64   // Channel 2 value
}

// Value returns the sample's value on channel ch.
func (s Sample) Value(ch Channel) float64 {
	if ch == ChannelB {
		return s.B
	}
	return s.A
}

// Point is a chart coordinate: X is the position within the window, Y the value.
type Point struct {
	X, Y float64
}

// Snapshot is an immutable copy of a window's contents, oldest first.
type Snapshot []Sample

// Series returns the values of one channel in arrival order.
func (s Snapshot) Series(ch Channel) []float64 {
	out := make([]float64, len(s))
	for i, smp := range s {
		out[i] = smp.Value(ch)
	}
	return out
}

// Points returns one channel as chart points, X = 0..len-1 in arrival order.
func (s Snapshot) Points(ch Channel) []Point {
	out := make([]Point, len(s))
	for i, smp := range s {
		out[i] = Point{X: float64(i), Y: smp.Value(ch)}
	}
	return out
}

// Last returns the newest sample and whether the snapshot holds any.
func (s Snapshot) Last() (Sample, bool) {
	if len(s) == 0 {
		return Sample{}, false
	}
	return s[len(s)-1], true
}
