package grpc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestMultiLimiter_PerKey(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	m := newMultiLimiter(rate.Limit(1), 1, time.Minute)
	m.now = func() time.Time { return now }

	assert.True(t, m.allow("a"))
	assert.False(t, m.allow("a"))
	assert.True(t, m.allow("b"))

	now = now.Add(time.Second)
	assert.True(t, m.allow("a"))
}

func TestMultiLimiter_EvictsIdle(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	m := newMultiLimiter(rate.Limit(1), 1, time.Minute)
	m.now = func() time.Time { return now }

	m.allow("a")
	m.allow("b")
	assert.Equal(t, 2, m.size())

	now = now.Add(2 * time.Minute)
	m.allow("c")
	assert.Equal(t, 1, m.size())
}

func TestMultiLimiter_SweepsOncePerTTL(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	m := newMultiLimiter(rate.Limit(1), 1, time.Minute)
	m.now = func() time.Time { return now }

	m.allow("a")
	sweptAt := m.lastSweep

	now = now.Add(90 * time.Second)
	m.allow("b")
	assert.True(t, m.lastSweep.After(sweptAt))
	assert.Equal(t, 1, m.size(), "a was idle past ttl")

	// a key idle past ttl survives until the next sweep is due
	now = now.Add(61 * time.Second)
	m.lastSweep = now.Add(-30 * time.Second)
	m.allow("c")
	assert.Equal(t, 2, m.size())

	now = now.Add(30 * time.Second)
	m.allow("c")
	assert.Equal(t, 1, m.size())
}

func TestMultiLimiter_RetryAfter(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, newMultiLimiter(rate.Limit(2), 1, time.Minute).retryAfter())
	assert.Equal(t, time.Second, newMultiLimiter(0, 1, time.Minute).retryAfter())
}
