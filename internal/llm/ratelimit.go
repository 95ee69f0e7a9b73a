package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitedCompleter bounds outbound calls to a fixed number per minute.
type RateLimitedCompleter struct {
	next    Completer
	limiter *rate.Limiter
}

// NewRateLimitedCompleter wraps next with a token bucket of requestsPerMinute.
func NewRateLimitedCompleter(next Completer, requestsPerMinute int) *RateLimitedCompleter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	return &RateLimitedCompleter{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute),
	}
}

// Complete waits for a token, then delegates.
func (c *RateLimitedCompleter) Complete(ctx context.Context, r Request) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter canceled: %w", err)
	}
	return c.next.Complete(ctx, r)
}
