// Package notify fans zone transitions out to interested observers.
package notify

import (
	"github.com/raidstats/zonetracker/pkg/core"
)

// Observer receives zone transitions. OnZoneEvent is called on the tracker's
// goroutine and must not block.
type Observer interface {
	OnZoneEvent(core.ZoneEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(core.ZoneEvent)

func (f ObserverFunc) OnZoneEvent(e core.ZoneEvent) { f(e) }

// Hub is an ordered observer list. Observers are called in subscription
// order. Not safe for concurrent use; subscribe before the session starts.
type Hub struct {
	observers []Observer
}

func NewHub(observers ...Observer) *Hub {
	h := &Hub{}
	for _, o := range observers {
		h.Subscribe(o)
	}
	return h
}

// Subscribe appends o. Nil observers are ignored.
func (h *Hub) Subscribe(o Observer) {
	if o == nil {
		return
	}
	h.observers = append(h.observers, o)
}

// Publish delivers e to every observer. A nil hub drops the event.
func (h *Hub) Publish(e core.ZoneEvent) {
	if h == nil {
		return
	}
	for _, o := range h.observers {
		o.OnZoneEvent(e)
	}
}

func (h *Hub) Len() int {
	if h == nil {
		return 0
	}
	return len(h.observers)
}
