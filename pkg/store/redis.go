package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	perrors "github.com/matzehuels/hexplanner/pkg/errors"
)

const (
	redisKeyPrefix = "hexplanner:plan:"
	redisIndexKey  = "hexplanner:plans"
)

// RedisStore keeps plans as JSON strings in Redis, with a set of IDs as index.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps client. The store takes ownership: Close closes client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) key(id string) string { return redisKeyPrefix + id }

func (s *RedisStore) Get(ctx context.Context, id string) (*Plan, error) {
	if err := perrors.ValidatePlanID(id); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", id, err)
	}
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse plan %s: %w", id, err)
	}
	return &p, nil
}

func (s *RedisStore) Set(ctx context.Context, p *Plan) error {
	if err := validate(p); err != nil {
		return err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(p.ID), data, 0)
		pipe.SAdd(ctx, redisIndexKey, p.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", p.ID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := perrors.ValidatePlanID(id); err != nil {
		return err
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key(id))
		pipe.SRem(ctx, redisIndexKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]*Plan, error) {
	ids, err := s.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers: %w", err)
	}
	if len(ids) == 0 {
		return []*Plan{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	out := make([]*Plan, 0, len(values))
	for i, v := range values {
		// Index entries can outlive their plan if a key expired or was
		// removed by hand.
		str, ok := v.(string)
		if !ok {
			continue
		}
		var p Plan
		if err := json.Unmarshal([]byte(str), &p); err != nil {
			return nil, fmt.Errorf("parse plan %s: %w", ids[i], err)
		}
		out = append(out, &p)
	}
	sortPlans(out)
	return out, nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
