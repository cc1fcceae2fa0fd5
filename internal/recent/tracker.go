package recent

import (
	"container/list"
	"time"
)

// Default bounds for a tracker. 30 seconds comfortably covers the catalog's
// eventual-consistency window for freshly written resources.
const (
	DefaultTTL     = 30 * time.Second
	DefaultMaxSize = 1024
)

type entry struct {
	key     string
	touched time.Time
}

// Tracker is a bounded, time-windowed record of recently mutated resource
// keys. Touching a key moves it to the most-recently-used end; pruning evicts
// from the least-recently-used end, TTL violations first, then size overflow.
//
// Pruning is pull-based: it happens only on Touch and ContainsFresh, never on
// a background timer. A Tracker is not safe for concurrent use.
type Tracker struct {
	ttl     time.Duration
	maxSize int
	now     func() time.Time

	order    *list.List // front = least recently used
	elements map[string]*list.Element
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithTTL overrides the freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(t *Tracker) { t.ttl = ttl }
}

// WithMaxSize overrides the entry bound.
func WithMaxSize(n int) Option {
	return func(t *Tracker) { t.maxSize = n }
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New creates a Tracker with the default TTL and size bound.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		ttl:      DefaultTTL,
		maxSize:  DefaultMaxSize,
		now:      time.Now,
		order:    list.New(),
		elements: make(map[string]*list.Element),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Touch records or refreshes the last-seen time for key and prunes anything
// past the TTL or beyond the size bound. Empty keys are ignored.
func (t *Tracker) Touch(key string) {
	if key == "" {
		return
	}
	now := t.now()
	if el, ok := t.elements[key]; ok {
		el.Value.(*entry).touched = now
		t.order.MoveToBack(el)
	} else {
		t.elements[key] = t.order.PushBack(&entry{key: key, touched: now})
	}
	t.prune(now)
}

// ContainsFresh reports whether key was touched within the TTL. A stale hit
// counts as a miss and is evicted immediately.
func (t *Tracker) ContainsFresh(key string) bool {
	if key == "" {
		return false
	}
	el, ok := t.elements[key]
	if !ok {
		return false
	}
	now := t.now()
	if now.Sub(el.Value.(*entry).touched) >= t.ttl {
		t.remove(el)
		t.prune(now)
		return false
	}
	return true
}

// Len returns the number of tracked keys, stale entries included.
func (t *Tracker) Len() int {
	return t.order.Len()
}

// prune evicts from the least-recently-used end until the oldest entry is
// within the TTL and the tracker is within its size bound.
func (t *Tracker) prune(now time.Time) {
	cutoff := now.Add(-t.ttl)
	for t.order.Len() > 0 {
		oldest := t.order.Front()
		if oldest.Value.(*entry).touched.After(cutoff) && t.order.Len() <= t.maxSize {
			break
		}
		t.remove(oldest)
	}
}

func (t *Tracker) remove(el *list.Element) {
	delete(t.elements, el.Value.(*entry).key)
	t.order.Remove(el)
}
