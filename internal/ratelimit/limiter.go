package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// allowScript increments the counter and starts the window in one atomic
// step, so a counter can never be left without a TTL.
var allowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// Limiter throttles an operation to a fixed number of attempts per window,
// keyed per client. Counters live in redis so the window survives process
// restarts. A nil client disables throttling.
type Limiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *Limiter {
	return &Limiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

// Allow records an attempt for key and reports whether it is within the
// window's budget. The counter expires with the window; the first attempt
// starts it.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.client == nil {
		return true, nil
	}

	redisKey := fmt.Sprintf("%s%s", l.prefix, key)

	count, err := allowScript.Run(ctx, l.client, []string{redisKey}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limit incr failed: %w", err)
	}

	return count <= int64(l.limit), nil
}
