// Package ratelimit provides per-client request rate limiting backed by token buckets.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultRate     float64 // requests per second
	DefaultBurst    int
	CleanupInterval time.Duration
	IdleTimeout     time.Duration
	EndpointConfigs []EndpointConfig
}

type entry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Limiter manages one token bucket per client and endpoint.
type Limiter struct {
	mu          sync.Mutex
	buckets     map[string]*entry
	config      *Config
	now         func() time.Time
	cleanupStop chan struct{}
	stopOnce    sync.Once
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultRate:     5,
			DefaultBurst:    10,
			CleanupInterval: 5 * time.Minute,
			IdleTimeout:     time.Hour,
		}
	}

	l := &Limiter{
		buckets: make(map[string]*entry),
		config:  config,
		now:     time.Now,
	}

	// Start cleanup goroutine if enabled
	if config.Enabled && config.CleanupInterval > 0 {
		l.cleanupStop = make(chan struct{})
		go l.cleanup(config.CleanupInterval)
	}

	return l
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
// Returns true if allowed, false if rate limited, along with rate limit information.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled {
		return true, Info{Allowed: true}
	}

	ec := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if ec == nil {
		ec = &EndpointConfig{Rate: l.config.DefaultRate, Burst: l.config.DefaultBurst}
	}

	// Unlimited endpoint (e.g., health check)
	if ec.Rate <= 0 {
		return true, Info{Allowed: true}
	}

	burst := ec.Burst
	if burst <= 0 {
		burst = int(math.Max(1, math.Ceil(ec.Rate)))
	}

	now := l.now()
	e := l.getBucket(clientID+":"+method+":"+endpoint, ec.Rate, burst, now)
	allowed := e.limiter.AllowN(now, 1)

	tokens := e.limiter.TokensAt(now)
	info := Info{
		Allowed:   allowed,
		Limit:     burst,
		Remaining: max(0, int(tokens)),
		ResetTime: now.Add(secondsToDuration((float64(burst) - tokens) / ec.Rate)),
	}
	if !allowed {
		info.RetryAfter = secondsToDuration((1 - tokens) / ec.Rate)
	}
	return allowed, info
}

func (l *Limiter) getBucket(key string, r float64, burst int, now time.Time) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.buckets[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rate.Limit(r), burst)}
		l.buckets[key] = e
	}
	e.lastAccess = now
	return e
}

// Len returns the number of tracked buckets
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanupBuckets()
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupBuckets removes buckets that have been idle longer than IdleTimeout.
func (l *Limiter) cleanupBuckets() {
	idle := l.config.IdleTimeout
	if idle <= 0 {
		idle = time.Hour
	}
	cutoff := l.now().Add(-idle)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.buckets {
		if e.lastAccess.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}

func secondsToDuration(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
