// Package ratelimit throttles outbound calls to the external services the
// booking engine depends on (search providers, payment gateway). Each named
// service gets its own token bucket.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

type ServiceLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	defaults Config
}

type Config struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 10,
		BurstSize:         20,
	}
}

func NewServiceLimiter(config Config) *ServiceLimiter {
	return &ServiceLimiter{
		limiters: make(map[string]*rate.Limiter),
		defaults: config,
	}
}

func NewServiceLimiterWithDefaults() *ServiceLimiter {
	return NewServiceLimiter(DefaultConfig())
}

// GetLimiter returns the bucket for a service, creating one with the default
// config on first use.
func (p *ServiceLimiter) GetLimiter(service string) *rate.Limiter {
	p.mu.RLock()
	limiter, exists := p.limiters[service]
	p.mu.RUnlock()

	if exists {
		return limiter
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if limiter, exists = p.limiters[service]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(p.defaults.RequestsPerSecond), p.defaults.BurstSize)
	p.limiters[service] = limiter
	return limiter
}

// SetServiceLimit overrides the rate for one service.
func (p *ServiceLimiter) SetServiceLimit(service string, rps float64, burst int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.limiters[service] = rate.NewLimiter(rate.Limit(rps), burst)
}

// Wait blocks until the service's bucket permits a call or ctx is done.
func (p *ServiceLimiter) Wait(ctx context.Context, service string) error {
	return p.GetLimiter(service).Wait(ctx)
}
