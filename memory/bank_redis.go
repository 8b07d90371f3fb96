package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/attachehq/attache/core"
)

// DefaultRedisPrefix namespaces bank entries in a shared keyspace.
const DefaultRedisPrefix = "attache:memory:"

// DialRedis connects to a Redis server and verifies it with a ping.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// RedisBankOptions configures a RedisBank.
type RedisBankOptions struct {
	// Prefix namespaces the bank's keys.
	Prefix string
}

// RedisBank is a MemoryBank backed by Redis, for deployments where
// summaries must survive process restarts or be shared between
// instances. Entries are stored as JSON under prefixed keys.
type RedisBank struct {
	client *redis.Client
	prefix string
}

var _ core.MemoryBank = (*RedisBank)(nil)

// NewRedisBank wraps an existing client. The caller owns the client's
// lifecycle.
func NewRedisBank(client *redis.Client, optFns ...func(o *RedisBankOptions)) *RedisBank {
	opts := RedisBankOptions{
		Prefix: DefaultRedisPrefix,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &RedisBank{
		client: client,
		prefix: opts.Prefix,
	}
}

// Persist stores the summary under key, overwriting any previous entry.
func (b *RedisBank) Persist(ctx context.Context, key, text string) error {
	if key == "" {
		return fmt.Errorf("summary key is empty")
	}

	entry := core.Summary{
		Key:       key,
		Text:      text,
		UpdatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return b.client.Set(ctx, b.prefix+key, data, 0).Err()
}

// Load returns the summary text stored under key.
func (b *RedisBank) Load(ctx context.Context, key string) (string, error) {
	entry, err := b.load(ctx, key)
	if err != nil {
		return "", err
	}

	return entry.Text, nil
}

// Keys returns all stored keys, sorted.
func (b *RedisBank) Keys(ctx context.Context) ([]string, error) {
	keys := make([]string, 0)

	iter := b.client.Scan(ctx, 0, b.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), b.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	sort.Strings(keys)

	return keys, nil
}

// Delete removes the entry under key.
func (b *RedisBank) Delete(ctx context.Context, key string) error {
	n, err := b.client.Del(ctx, b.prefix+key).Result()
	if err != nil {
		return err
	}

	if n == 0 {
		return fmt.Errorf("%w: %s", core.ErrSummaryNotFound, key)
	}

	return nil
}

// Find returns entries matching the query, sorted by key. Entries
// deleted mid-scan are skipped.
func (b *RedisBank) Find(ctx context.Context, query string) ([]core.Summary, error) {
	keys, err := b.Keys(ctx)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]core.Summary, len(keys))
	for _, key := range keys {
		entry, err := b.load(ctx, key)
		if errors.Is(err, core.ErrSummaryNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		entries[key] = entry
	}

	return findEntries(entries, query), nil
}

func (b *RedisBank) load(ctx context.Context, key string) (core.Summary, error) {
	data, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return core.Summary{}, fmt.Errorf("%w: %s", core.ErrSummaryNotFound, key)
	}
	if err != nil {
		return core.Summary{}, err
	}

	var entry core.Summary
	if err := json.Unmarshal(data, &entry); err != nil {
		return core.Summary{}, fmt.Errorf("corrupt summary under %s: %w", key, err)
	}

	return entry, nil
}
