package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/adaptive-tutor/internal/config"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// newTestLimiter returns a limiter without a cleanup goroutine driven by a fake clock
func newTestLimiter(cfg *Config) (*Limiter, *fakeClock) {
	cfg.CleanupInterval = 0
	clock := &fakeClock{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(cfg)
	l.now = clock.now
	return l, clock
}

func TestBucket_TakeAndRefill(t *testing.T) {
	start := time.Now()
	b := newBucket(10, 1.0, start)

	for i := 0; i < 10; i++ {
		allowed, _, _, _ := b.take(start)
		require.True(t, allowed, "request %d", i+1)
	}
	allowed, remaining, full, wait := b.take(start)
	assert.False(t, allowed)
	assert.Zero(t, remaining)
	assert.Equal(t, time.Second, wait)
	assert.Equal(t, start.Add(10*time.Second), full)

	allowed, _, _, _ = b.take(start.Add(1100 * time.Millisecond))
	assert.True(t, allowed, "one token refilled")
	allowed, _, _, _ = b.take(start.Add(1100 * time.Millisecond))
	assert.False(t, allowed)
}

func TestLimiter_DefaultLimit(t *testing.T) {
	l, clock := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("127.0.0.1", "/concepts", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := l.Allow("127.0.0.1", "/concepts", "GET")
	assert.False(t, allowed)
	assert.Zero(t, info.Remaining)
	assert.InDelta(t, float64(6*time.Second), float64(info.RetryAfter), float64(time.Millisecond))

	clock.advance(7 * time.Second)
	allowed, _ = l.Allow("127.0.0.1", "/concepts", "GET")
	assert.True(t, allowed)
}

func TestLimiter_Lists(t *testing.T) {
	l, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"10.0.0.2": true},
	})
	defer l.Stop()

	for i := 0; i < 50; i++ {
		allowed, info := l.Allow("10.0.0.1", "/feedback", "POST")
		require.True(t, allowed)
		assert.Zero(t, info.Limit)
	}

	allowed, _ := l.Allow("10.0.0.2", "/health", "GET")
	assert.False(t, allowed, "blacklist applies before endpoint matching")
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 50; i++ {
		allowed, info := l.Allow("127.0.0.1", "/essays/grade", "POST")
		require.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
}

func TestLimiter_EndpointTiers(t *testing.T) {
	l, _ := newTestLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	})
	defer l.Stop()

	for i := 0; i < 3; i++ {
		allowed, info := l.Allow("127.0.0.1", "/essays/grade", "POST")
		require.True(t, allowed, "burst request %d", i+1)
		assert.Equal(t, 20, info.Limit)
	}
	allowed, _ := l.Allow("127.0.0.1", "/essays/grade", "POST")
	assert.False(t, allowed, "burst exhausted")

	_, info := l.Allow("127.0.0.1", "/progress/abc/MT", "GET")
	assert.Equal(t, 30, info.Limit, "prefix match")

	_, info = l.Allow("127.0.0.1", "/concepts", "GET")
	assert.Equal(t, 1000, info.Limit)

	for i := 0; i < 100; i++ {
		allowed, _ := l.Allow("127.0.0.1", "/health", "GET")
		require.True(t, allowed)
	}
}

func TestLimiter_BucketsPerClient(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer l.Stop()

	allowed, _ := l.Allow("10.0.0.1", "/concepts", "GET")
	assert.True(t, allowed)
	allowed, _ = l.Allow("10.0.0.1", "/concepts", "GET")
	assert.False(t, allowed)
	allowed, _ = l.Allow("10.0.0.2", "/concepts", "GET")
	assert.True(t, allowed)
}

func TestLimiter_Concurrent(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Hour})
	defer l.Stop()

	var wg sync.WaitGroup
	var allowed atomic.Int64
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("127.0.0.1", "/feedback", "POST"); ok {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 100, allowed.Load())
}

func TestLimiter_Sweep(t *testing.T) {
	l, clock := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer l.Stop()

	l.Allow("10.0.0.1", "/concepts", "GET")
	clock.advance(90 * time.Minute)
	l.Allow("10.0.0.2", "/concepts", "GET")

	assert.Equal(t, 1, l.sweep(clock.now().Add(-idleBucketTTL)))
	assert.Len(t, l.buckets, 1)
}

func TestLimiter_StopTwice(t *testing.T) {
	l := NewLimiter(nil)
	l.Stop()
	assert.NotPanics(t, l.Stop)

	allowed, info := l.Allow("127.0.0.1", "/concepts", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(config.RateLimitConfig{
		Enabled:       true,
		DefaultLimit:  60,
		DefaultWindow: time.Minute,
		Whitelist:     " 10.0.0.1 , ,10.0.0.2",
	})

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 60, cfg.DefaultLimit)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Whitelist)
	assert.Empty(t, cfg.Blacklist)
	assert.NotEmpty(t, cfg.EndpointConfigs)

	assert.False(t, NewConfig(config.RateLimitConfig{Enabled: false, DefaultLimit: 60}).Enabled)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		path, method string
		wantLimit    int
		wantNil      bool
	}{
		{"/health", "GET", 0, false},
		{"/feedback", "POST", 120, false},
		{"/feedback", "GET", 0, true},
		{"/motivation/123", "GET", 30, false},
		{"/essays/themes", "GET", 30, false},
		{"/metrics", "GET", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantLimit, got.Limit)
		})
	}
}
