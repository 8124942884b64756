package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetSet(t *testing.T) {
	c := New()

	_, ok := c.Get("auth_token")
	assert.False(t, ok)

	c.Set("auth_token", "tok-abc", time.Hour)
	v, ok := c.Get("auth_token")
	assert.True(t, ok)
	assert.Equal(t, "tok-abc", v)
}

func TestExpiry(t *testing.T) {
	now := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	c := NewWithClock(func() time.Time { return now })

	c.Set("auth_token", "tok-abc", 10*time.Minute)

	now = now.Add(9 * time.Minute)
	_, ok := c.Get("auth_token")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("auth_token")
	assert.False(t, ok)
}

func TestSetRefreshesDeadline(t *testing.T) {
	now := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	c := NewWithClock(func() time.Time { return now })

	c.Set("k", "v1", time.Minute)
	now = now.Add(50 * time.Second)
	c.Set("k", "v2", time.Minute)
	now = now.Add(30 * time.Second)

	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestDelete(t *testing.T) {
	c := New()
	c.Set("k", "v", time.Hour)
	c.Delete("k")

	_, ok := c.Get("k")
	assert.False(t, ok)
}
