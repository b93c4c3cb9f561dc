package notify

import (
	"sync/atomic"

	"github.com/raidstats/zonetracker/pkg/core"
)

// Receiver provides read access to a channel.
type Receiver[T any] interface {
	Receive() <-chan T
	Len() int
}

// ChannelObserver forwards zone events to a buffered channel for consumers
// on other goroutines. When the buffer is full the event is dropped and
// counted rather than stalling the tracker.
type ChannelObserver struct {
	ch      chan core.ZoneEvent
	dropped atomic.Uint64
}

var _ Receiver[core.ZoneEvent] = (*ChannelObserver)(nil)

// NewChannelObserver creates an observer with the given buffer size.
// Sizes below 1 are raised to 1.
func NewChannelObserver(size int) *ChannelObserver {
	if size < 1 {
		size = 1
	}
	return &ChannelObserver{ch: make(chan core.ZoneEvent, size)}
}

func (c *ChannelObserver) OnZoneEvent(e core.ZoneEvent) {
	select {
	case c.ch <- e:
	default:
		c.dropped.Add(1)
	}
}

// Receive returns the receive-only channel
func (c *ChannelObserver) Receive() <-chan core.ZoneEvent {
	return c.ch
}

// Len returns the number of events waiting in the buffer
func (c *ChannelObserver) Len() int {
	return len(c.ch)
}

// Dropped returns how many events did not fit in the buffer.
func (c *ChannelObserver) Dropped() uint64 {
	return c.dropped.Load()
}

// Close closes the channel. No events may be published afterwards.
func (c *ChannelObserver) Close() {
	close(c.ch)
}
