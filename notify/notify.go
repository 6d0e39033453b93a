// Package notify keeps the queue of transient user-facing messages. Each
// notice carries its own expiry timer, so stacked notices dismiss on their
// own schedule instead of sharing one.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a notice stays visible unless configured otherwise.
const DefaultTTL = 5 * time.Second

// Notice is one visible message.
type Notice struct {
	ID        uuid.UUID
	Text      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Center owns the notice queue. Safe for concurrent use.
type Center struct {
	mu       sync.Mutex
	ttl      time.Duration
	notices  []Notice
	timers   map[uuid.UUID]*time.Timer
	onChange func([]Notice)
}

// NewCenter constructs a Center. onChange fires with a snapshot of the
// queue after every mutation and may be nil. A non-positive ttl falls back
// to DefaultTTL.
func NewCenter(ttl time.Duration, onChange func([]Notice)) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{
		ttl:      ttl,
		timers:   make(map[uuid.UUID]*time.Timer),
		onChange: onChange,
	}
}

// Notify appends a notice and schedules its auto-dismissal.
func (c *Center) Notify(text string) {
	c.Post(text)
}

// Post is Notify returning the notice ID, for callers that dismiss early.
func (c *Center) Post(text string) uuid.UUID {
	now := time.Now()
	n := Notice{
		ID:        uuid.New(),
		Text:      text,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}

	c.mu.Lock()
	c.notices = append(c.notices, n)
	c.timers[n.ID] = time.AfterFunc(c.ttl, func() { c.Dismiss(n.ID) })
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(snapshot)
	return n.ID
}

// Dismiss removes a notice by ID. Dismissing an already-gone notice is a
// no-op, so a manual dismissal racing the expiry timer is harmless.
func (c *Center) Dismiss(id uuid.UUID) {
	c.mu.Lock()
	idx := -1
	for i, n := range c.notices {
		if n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return
	}
	c.notices = append(c.notices[:idx], c.notices[idx+1:]...)
	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(snapshot)
}

// Active returns the notices currently visible, oldest first.
func (c *Center) Active() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Center) snapshotLocked() []Notice {
	return append([]Notice(nil), c.notices...)
}

func (c *Center) emit(snapshot []Notice) {
	if c.onChange != nil {
		c.onChange(snapshot)
	}
}
