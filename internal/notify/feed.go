package notify

import (
	"sync"
	"time"
)

// DefaultTTL matches the toast lifetime of the web UI.
const DefaultTTL = 4 * time.Second

// Feed keeps notifications until they auto-dismiss after ttl.
type Feed struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items []Notification
}

func NewFeed(ttl time.Duration) *Feed {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Feed{ttl: ttl, now: time.Now}
}

func (f *Feed) Notify(n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expireLocked()
	f.items = append(f.items, n)
}

// Pending returns live notifications, oldest first.
func (f *Feed) Pending() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expireLocked()
	out := make([]Notification, len(f.items))
	copy(out, f.items)
	return out
}

// Dismiss reports whether id was still pending.
func (f *Feed) Dismiss(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.items {
		if n.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return true
		}
	}
	return false
}

func (f *Feed) expireLocked() {
	cutoff := f.now().Add(-f.ttl)
	keep := f.items[:0]
	for _, n := range f.items {
		if n.CreatedAt.After(cutoff) {
			keep = append(keep, n)
		}
	}
	f.items = keep
}
