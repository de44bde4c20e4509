package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClientInterface defines the interface for Redis operations
type ClientInterface interface {
	SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
	Expire(ctx context.Context, key string, expiration time.Duration) error
	Members(ctx context.Context, key string) ([]string, error)
	Ping(ctx context.Context) error
	Close() error

	// TxPipeline queues commands for atomic execution.
	TxPipeline() redis.Pipeliner
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)
