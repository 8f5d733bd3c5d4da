package ratelimit

import "golang.org/x/time/rate"

// Limiter is a process-wide token bucket. A nil *Limiter is unlimited.
type Limiter struct {
	local *rate.Limiter
}

// NewLimiter creates a limiter; if globalRate <= 0, it's unlimited.
func NewLimiter(globalRate float64, burst int) *Limiter {
	if globalRate <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{local: rate.NewLimiter(rate.Limit(globalRate), burst)}
}

// Allow reports whether a token is available right now.
func (l *Limiter) Allow() bool {
	if l == nil {
		return true
	}
	return l.local.Allow()
}
