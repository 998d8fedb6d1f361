package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyKind = "idempotency"

// IdempotencyStore holds one record per (scope, client key). Claim reserves
// the slot for an in-flight request, Save overwrites it with the finished
// response and Release frees it so a failed request can be retried.
type IdempotencyStore interface {
	Claim(ctx context.Context, scope, id string, record []byte, ttl time.Duration) (bool, error)
	Load(ctx context.Context, scope, id string) ([]byte, bool, error)
	Save(ctx context.Context, scope, id string, record []byte, ttl time.Duration) error
	Release(ctx context.Context, scope, id string) error
}

// IdempotencyKey is the redis key a (scope, id) pair is stored under.
func IdempotencyKey(scope, id string) string {
	return key(idempotencyKind, scope, id)
}

func (c *Client) Claim(ctx context.Context, scope, id string, record []byte, ttl time.Duration) (bool, error) {
	if err := c.ready(); err != nil {
		return false, err
	}
	return c.cmd.SetNX(ctx, IdempotencyKey(scope, id), record, ttl).Result()
}

// Load reports false when nothing is stored for the pair.
func (c *Client) Load(ctx context.Context, scope, id string) ([]byte, bool, error) {
	if err := c.ready(); err != nil {
		return nil, false, err
	}
	raw, err := c.cmd.Get(ctx, IdempotencyKey(scope, id)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	case len(raw) == 0:
		return nil, false, nil
	}
	return raw, true, nil
}

func (c *Client) Save(ctx context.Context, scope, id string, record []byte, ttl time.Duration) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.cmd.Set(ctx, IdempotencyKey(scope, id), record, ttl).Err()
}

func (c *Client) Release(ctx context.Context, scope, id string) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.cmd.Del(ctx, IdempotencyKey(scope, id)).Err()
}
