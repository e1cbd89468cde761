package client

import (
	"time"

	"golang.org/x/time/rate"
)

// NewPacer returns a limiter that lets one request through per interval.
// Each paginated stream owns one; the first Wait returns immediately.
func NewPacer(interval time.Duration) *rate.Limiter {
	return rate.NewLimiter(rate.Every(interval), 1)
}

// NewRateLimiter returns the token bucket shared by every stream of one source.
// A non-positive rate never blocks.
func NewRateLimiter(ratePerSec int) *rate.Limiter {
	if ratePerSec <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(ratePerSec), 1)
}
