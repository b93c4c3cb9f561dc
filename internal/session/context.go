package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Context holds the identity of the raid currently being recorded.
// It is read by the log handler from any goroutine.
type Context struct {
	mu        sync.RWMutex
	id        string
	location  string
	startTime time.Time
	active    bool
}

// NewContext creates a new Context with no session loaded
func NewContext() *Context {
	return &Context{location: "No location loaded"}
}

// Start begins a new session at location and returns its id.
func (c *Context) Start(location string, at time.Time) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = uuid.NewString()
	c.location = location
	c.startTime = at
	c.active = true
	return c.id
}

// End marks the session finished. Identity is kept for log correlation
// until the next Start.
func (c *Context) End() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
}

func (c *Context) ID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.id
}

func (c *Context) Location() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.location
}

func (c *Context) StartTime() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.startTime
}

func (c *Context) Active() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}
