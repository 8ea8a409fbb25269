package ratelimit

import "strings"

// healthCheck is never limited
var healthCheck = EndpointConfig{Path: "/health", Method: "GET"}

// MatchEndpoint returns the config for method and path, or nil when none
// applies. An exact path wins over a prefix entry; entries ending in "/"
// match every path below them ("/progress/" matches "/progress/{id}/MT").
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if path == healthCheck.Path && method == healthCheck.Method {
		unlimited := healthCheck
		return &unlimited
	}

	var prefix *EndpointConfig
	for i := range configs {
		c := &configs[i]
		if c.Method != method {
			continue
		}
		if c.Path == path {
			return c
		}
		if prefix == nil && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			prefix = c
		}
	}
	return prefix
}
