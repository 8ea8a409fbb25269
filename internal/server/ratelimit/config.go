package ratelimit

import (
	"strings"
	"time"

	"github.com/jonathan/adaptive-tutor/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// NewConfig builds a limiter Config from the loaded settings.
func NewConfig(settings config.RateLimitConfig) *Config {
	if !settings.Enabled {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    settings.DefaultLimit,
		DefaultWindow:   settings.DefaultWindow,
		CleanupInterval: settings.CleanupInterval,
		Whitelist:       parseIPList(settings.Whitelist),
		Blacklist:       parseIPList(settings.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the endpoint tiers. Routes that call the
// generation backend get the strictest limits.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: essay grading and theme generation
		{Path: "/essays/grade", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},
		{Path: "/essays/themes", Method: "GET", Limit: 30, Window: time.Hour, Burst: 5},

		// Tier 2: per-answer and per-learner generation
		{Path: "/feedback", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/progress/", Method: "GET", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/motivation/", Method: "GET", Limit: 30, Window: time.Minute, Burst: 5},

		// Tier 3: everything else uses the default limit
		// Tier 4: /health is unlimited, see MatchEndpoint
	}
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	if list == "" {
		return result
	}

	ips := strings.Split(list, ",")
	for _, ip := range ips {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}

	return result
}

