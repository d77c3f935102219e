package ratelimit

import "time"

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string  // Endpoint path pattern (supports prefix matching)
	Method string  // HTTP method (GET, POST, etc.)
	Rate   float64 // Requests per second; zero means unlimited
	Burst  int     // Burst capacity (defaults to ceil(Rate) if 0)
}

// NewConfig builds a configuration where extraction is limited to ratePerSec
// with the given burst and other endpoints get ten times that allowance.
func NewConfig(ratePerSec float64, burst int) *Config {
	if ratePerSec <= 0 {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultRate:     ratePerSec * 10,
		DefaultBurst:    burst * 10,
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     time.Hour,
		EndpointConfigs: DefaultEndpointConfigs(ratePerSec, burst),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific configurations.
func DefaultEndpointConfigs(ratePerSec float64, burst int) []EndpointConfig {
	return []EndpointConfig{
		// Expensive: decodes a file
		{Path: "/extract", Method: "POST", Rate: ratePerSec, Burst: burst},
		{Path: "/segment", Method: "POST", Rate: ratePerSec * 4, Burst: burst * 4},

		// Long-lived stream
		{Path: "/events", Method: "GET", Rate: 1, Burst: 5},
	}
}
