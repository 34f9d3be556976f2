package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const gateKey = "chat:throttle:last"

// Gate is the global chat throttle shared by every process that points at
// the same Redis. SET NX PX makes check-and-advance a single atomic step:
// the key exists exactly while the interval since the last accepted request
// has not elapsed.
type Gate struct {
	client   *redis.Client
	interval time.Duration
	key      string
}

// NewGate creates a Gate wrapping the given Redis client.
func NewGate(client *redis.Client, interval time.Duration) *Gate {
	return &Gate{client: client, interval: interval, key: gateKey}
}

// Allow reports whether this request may proceed and, if so, records it.
func (g *Gate) Allow(ctx context.Context) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key, time.Now().UnixMilli(), g.interval).Result()
	if err != nil {
		return false, fmt.Errorf("throttle gate: %w", err)
	}
	return ok, nil
}
