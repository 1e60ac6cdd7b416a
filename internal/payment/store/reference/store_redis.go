package reference

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const referenceKeyPrefix = "payref:"

// RedisRegistry is a Redis-backed reference registry for distributed
// deployments where several instances must share the uniqueness guarantee.
// Keys carry no TTL: an accepted reference is spent forever.
type RedisRegistry struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed reference registry.
func NewRedis(client *redis.Client) *RedisRegistry {
	return &RedisRegistry{client: client}
}

func (r *RedisRegistry) Contains(ctx context.Context, reference string) (bool, error) {
	n, err := r.client.Exists(ctx, referenceKeyPrefix+reference).Result()
	if err != nil {
		return false, fmt.Errorf("check reference: %w", err)
	}
	return n > 0, nil
}

// TryCommit uses SETNX so the test-and-insert is a single atomic Redis
// command. The stored value is a marker; key existence is what matters.
func (r *RedisRegistry) TryCommit(ctx context.Context, reference string) (bool, error) {
	ok, err := r.client.SetNX(ctx, referenceKeyPrefix+reference, "1", 0).Result()
	if err != nil {
		return false, fmt.Errorf("commit reference: %w", err)
	}
	return ok, nil
}
