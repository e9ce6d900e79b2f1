// Package rdx opens the optional Redis connection used for notifications.
package rdx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Open returns a client for addr after a ping succeeds. An empty addr means
// Redis is not configured and yields (nil, nil).
func Open(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Health adapts a client to the health route's ping check.
type Health struct {
	Client *redis.Client
}

func (h Health) Ping(ctx context.Context) error {
	return h.Client.Ping(ctx).Err()
}
