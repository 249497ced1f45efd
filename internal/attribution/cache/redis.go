package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"prognosis/internal/attribution"
)

const keyPrefix = "prognosis:attribution:"

// Redis stores attribution results as JSON with a TTL, shared across
// replicas serving the same model.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) (*attribution.Result, bool, error) {
	data, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get attribution: %w", err)
	}
	var res attribution.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, false, fmt.Errorf("decode attribution: %w", err)
	}
	return &res, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, res *attribution.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode attribution: %w", err)
	}
	if err := r.client.Set(ctx, keyPrefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("set attribution: %w", err)
	}
	return nil
}
