// Package redis provides a Redis-backed credential medium.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pentopublic/pentopublic-client/internal/ports"
)

// DefaultPrefix namespaces credential keys.
const DefaultPrefix = "pentopublic:credentials:"

var _ ports.KeyValueStore = (*KV)(nil)

// KVOptions configures a KV.
type KVOptions struct {
	Prefix string
	// TTL expires stored keys; zero keeps them until deleted.
	TTL time.Duration
}

// KV stores credential keys as plain Redis strings.
// Multi-key writes and deletes run in one MULTI/EXEC transaction.
type KV struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewKV creates a Redis-backed KeyValueStore.
func NewKV(client redis.UniversalClient, opts KVOptions) *KV {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &KV{client: client, prefix: prefix, ttl: opts.TTL}
}

func (s *KV) key(k string) string { return s.prefix + k }

func (s *KV) Put(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, s.key(k), v, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	return nil
}

func (s *KV) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}

	// One transaction gives a consistent view of all keys; MGET fails across cluster slots.
	cmds := make([]*redis.StringCmd, len(keys))
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, k := range full {
			cmds[i] = pipe.Get(ctx, k)
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	for i, cmd := range cmds {
		v, cmdErr := cmd.Result()
		if errors.Is(cmdErr, redis.Nil) {
			continue
		}
		if cmdErr != nil {
			return nil, fmt.Errorf("redis get %s: %w", keys[i], cmdErr)
		}
		out[keys[i]] = v
	}
	return out, nil
}

func (s *KV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range keys {
			pipe.Del(ctx, s.key(k))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}
