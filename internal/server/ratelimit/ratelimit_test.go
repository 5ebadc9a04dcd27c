package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(configs ...EndpointConfig) *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		EndpointConfigs: configs,
	}
}

func TestAllow_BurstThenLimited(t *testing.T) {
	l := NewLimiter(testConfig(EndpointConfig{
		Path: "/profile/generate", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2,
	}))
	defer l.Stop()

	allowed, _ := l.Allow("1.2.3.4", "/profile/generate", "POST")
	assert.True(t, allowed)
	allowed, _ = l.Allow("1.2.3.4", "/profile/generate", "POST")
	assert.True(t, allowed)

	allowed, info := l.Allow("1.2.3.4", "/profile/generate", "POST")
	assert.False(t, allowed)
	assert.Equal(t, 10, info.Limit)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
}

func TestAllow_ClientsIsolated(t *testing.T) {
	l := NewLimiter(testConfig(EndpointConfig{
		Path: "/opportunities", Method: "POST", Limit: 60, Window: time.Hour, Burst: 1,
	}))
	defer l.Stop()

	allowed, _ := l.Allow("1.1.1.1", "/opportunities", "POST")
	assert.True(t, allowed)
	allowed, _ = l.Allow("1.1.1.1", "/opportunities", "POST")
	assert.False(t, allowed)

	// A different client has its own bucket.
	allowed, _ = l.Allow("2.2.2.2", "/opportunities", "POST")
	assert.True(t, allowed)
}

func TestAllow_DisabledAndLists(t *testing.T) {
	disabled := NewLimiter(&Config{Enabled: false})
	allowed, _ := disabled.Allow("anyone", "/profile/generate", "POST")
	assert.True(t, allowed)

	cfg := testConfig()
	cfg.Whitelist["10.0.0.1"] = true
	cfg.Blacklist["10.0.0.2"] = true
	l := NewLimiter(cfg)
	defer l.Stop()

	allowed, _ = l.Allow("10.0.0.1", "/profile/generate", "POST")
	assert.True(t, allowed)
	allowed, _ = l.Allow("10.0.0.2", "/health", "POST")
	assert.False(t, allowed)
}

func TestAllow_HealthUnlimited(t *testing.T) {
	l := NewLimiter(testConfig())
	defer l.Stop()

	for i := 0; i < 50; i++ {
		allowed, info := l.Allow("1.2.3.4", "/health", "GET")
		assert.True(t, allowed)
		assert.Equal(t, 0, info.Limit)
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/opportunities/from-link", Method: "POST", Limit: 30},
		{Path: "/opportunities/", Method: "POST", Limit: 60},
		{Path: "/profile/entries/", Method: "PUT", Limit: 100},
	}

	exact := MatchEndpoint("/opportunities/from-link", "POST", configs)
	require.NotNil(t, exact)
	assert.Equal(t, 30, exact.Limit)

	prefix := MatchEndpoint("/opportunities/7/assessment", "POST", configs)
	require.NotNil(t, prefix)
	assert.Equal(t, 60, prefix.Limit)

	assert.Nil(t, MatchEndpoint("/opportunities/7", "GET", configs))
	assert.Equal(t, 0, MatchEndpoint("/health", "GET", configs).Limit)
}

func TestRemoveIdleBuckets(t *testing.T) {
	l := NewLimiter(testConfig(EndpointConfig{
		Path: "/opportunities", Method: "POST", Limit: 60, Window: time.Hour, Burst: 5,
	}))
	defer l.Stop()

	l.Allow("1.2.3.4", "/opportunities", "POST")
	require.Len(t, l.buckets, 1)

	// A cutoff in the future treats every bucket as idle.
	l.removeIdleBuckets(time.Now().Add(time.Minute))
	assert.Empty(t, l.buckets)
}
