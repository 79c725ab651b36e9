package api

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/identity"

	"github.com/stretchr/testify/assert"
)

func TestClientKey(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/items", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "ip:10.0.0.1", clientKey(r))

	r.Header.Set(identity.Header, " 007 ")
	assert.Equal(t, "user:7", clientKey(r))

	r.Header.Set(identity.Header, "not-a-number")
	assert.Equal(t, "ip:10.0.0.1", clientKey(r))
}

func TestRateLimiter_MalformedIDsShareBucket(t *testing.T) {
	l := newRateLimiter(config.RateLimitConfig{RPS: 1, Burst: 1})

	for i := 0; i < 100; i++ {
		r := httptest.NewRequest(http.MethodGet, "/items", nil)
		r.RemoteAddr = "10.0.0.1:5555"
		r.Header.Set(identity.Header, "junk-"+strconv.Itoa(i))
		l.allow(r)
	}
	assert.Equal(t, 1, l.size())
}

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l := newRateLimiter(config.RateLimitConfig{RPS: 10, Burst: 1})
	l.now = func() time.Time { return now }
	l.lastSweep.Store(now.UnixNano())

	for i := 1; i <= 50; i++ {
		r := httptest.NewRequest(http.MethodGet, "/items", nil)
		r.Header.Set(identity.Header, strconv.Itoa(i))
		assert.True(t, l.allow(r))
	}
	assert.Equal(t, 50, l.size())

	now = now.Add(limiterIdleTTL + time.Second)
	r := httptest.NewRequest(http.MethodGet, "/items", nil)
	r.Header.Set(identity.Header, "1")
	assert.True(t, l.allow(r))

	assert.Equal(t, 1, l.size())
}
