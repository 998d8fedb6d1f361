package redis

import (
	"context"
	"time"
)

const rateLimitKind = "rate_limit"

// WindowDecision is the outcome of one fixed-window check.
type WindowDecision struct {
	Allowed   bool
	Count     int64
	Remaining int64
	ResetIn   time.Duration
}

// RateLimiter is the fixed-window surface used by the generation limiter.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (WindowDecision, error)
}

// RateLimitKey is the counter key for scope.
func RateLimitKey(scope string) string {
	return key(rateLimitKind, scope)
}

// FixedWindowAllow counts one hit against scope. The first hit of a window
// arms the expiry; a counter found without one (a crash between INCR and
// PEXPIRE) is re-armed so it cannot block forever.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (WindowDecision, error) {
	if err := c.ready(); err != nil {
		return WindowDecision{}, err
	}
	k := RateLimitKey(scope)
	count, err := c.cmd.Incr(ctx, k).Result()
	if err != nil {
		return WindowDecision{}, err
	}

	resetIn := window
	if count > 1 {
		ttl, err := c.cmd.PTTL(ctx, k).Result()
		if err != nil {
			return WindowDecision{}, err
		}
		if ttl > 0 {
			resetIn = ttl
		}
	}
	if window > 0 && resetIn == window {
		if err := c.cmd.PExpire(ctx, k, window).Err(); err != nil {
			return WindowDecision{}, err
		}
	}

	return WindowDecision{
		Allowed:   count <= limit,
		Count:     count,
		Remaining: max(limit-count, 0),
		ResetIn:   resetIn,
	}, nil
}
