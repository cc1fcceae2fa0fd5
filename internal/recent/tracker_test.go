package recent

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTracker(opts ...Option) (*Tracker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	opts = append([]Option{WithClock(clock.now)}, opts...)
	return New(opts...), clock
}

func TestContainsFreshWithinTTL(t *testing.T) {
	tracker, clock := newTestTracker()

	tracker.Touch("urn:li:dataset:a")
	clock.advance(29 * time.Second)

	assert.True(t, tracker.ContainsFresh("urn:li:dataset:a"))
}

func TestContainsFreshAfterTTLEvicts(t *testing.T) {
	tracker, clock := newTestTracker()

	tracker.Touch("urn:li:dataset:a")
	clock.advance(DefaultTTL)

	assert.False(t, tracker.ContainsFresh("urn:li:dataset:a"))
	// Stale lookup physically removes the entry, not just hides it.
	assert.Equal(t, 0, tracker.Len())
}

func TestContainsFreshUnknownKey(t *testing.T) {
	tracker, _ := newTestTracker()

	assert.False(t, tracker.ContainsFresh("urn:li:dataset:missing"))
	assert.False(t, tracker.ContainsFresh(""))
}

func TestTouchRefreshesExistingKey(t *testing.T) {
	tracker, clock := newTestTracker()

	tracker.Touch("urn:li:dataset:a")
	clock.advance(20 * time.Second)
	tracker.Touch("urn:li:dataset:a")
	clock.advance(20 * time.Second)

	// 40s since first touch, 20s since refresh: still fresh.
	assert.True(t, tracker.ContainsFresh("urn:li:dataset:a"))
	assert.Equal(t, 1, tracker.Len())
}

func TestTouchPrunesExpiredEntries(t *testing.T) {
	tracker, clock := newTestTracker()

	tracker.Touch("urn:li:dataset:old")
	clock.advance(DefaultTTL + time.Second)
	tracker.Touch("urn:li:dataset:new")

	assert.Equal(t, 1, tracker.Len())
	assert.False(t, tracker.ContainsFresh("urn:li:dataset:old"))
	assert.True(t, tracker.ContainsFresh("urn:li:dataset:new"))
}

func TestSizeBoundEvictsLeastRecentlyUsed(t *testing.T) {
	tracker, clock := newTestTracker(WithMaxSize(3))

	for i := range 3 {
		tracker.Touch(fmt.Sprintf("key-%d", i))
		clock.advance(time.Millisecond)
	}
	// Refresh key-0 so key-1 becomes the LRU entry.
	tracker.Touch("key-0")
	tracker.Touch("key-3")

	require.Equal(t, 3, tracker.Len())
	assert.False(t, tracker.ContainsFresh("key-1"))
	assert.True(t, tracker.ContainsFresh("key-0"))
	assert.True(t, tracker.ContainsFresh("key-2"))
	assert.True(t, tracker.ContainsFresh("key-3"))
}

func TestTouchIgnoresEmptyKey(t *testing.T) {
	tracker, _ := newTestTracker()

	tracker.Touch("")

	assert.Equal(t, 0, tracker.Len())
}
