package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
)

// setIfGeneration stores ARGV[2] at KEYS[2] only while the generation at KEYS[1] still equals ARGV[1].
var setIfGeneration = redis.NewScript(`
if (redis.call("GET", KEYS[1]) or "0") ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
else
	redis.call("SET", KEYS[2], ARGV[2])
end
return 1
`)

// Set is a family of msgpack encoded values stored in redis under a shared prefix.
//
// The set carries a generation counter that DeleteWhere bumps. MutexGetSet only stores a
// computed value if the generation did not move while it was computed, so a value derived
// from data read before an invalidation never lands in the cache after it.
type Set[T any] struct {
	// m serializes the slow path of MutexGetSet
	m sync.Mutex

	client *redis.Client
	prefix string
	// genKey sits outside prefix so that DeleteWhere never scans it
	genKey string
}

func NewSet[T any](client *redis.Client, prefix string) *Set[T] {
	return &Set[T]{
		client: client,
		prefix: prefix + ":",
		genKey: prefix + "@generation",
	}
}

func (c *Set[T]) key(key string) string {
	return c.prefix + key
}

// Get returns ErrNotFound when the key does not exist.
func (c *Set[T]) Get(ctx context.Context, key string, dest *T) error {
	key = c.key(key)
	resp, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	} else if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to get value from redis")
		return err
	}
	if err := msgpack.Unmarshal(resp, dest); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to unmarshal value from msgpack from redis")
		return err
	}
	return nil
}

func (c *Set[T]) Set(ctx context.Context, key string, value *T, expire time.Duration) error {
	key = c.key(key)
	if l := log.Trace(); l.Enabled() {
		l.Str("key", key).Msg("setting value to redis")
	}
	b, err := msgpack.Marshal(value)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to marshal value with msgpack")
		return err
	}
	if err := c.client.Set(ctx, key, b, expire).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to set value to redis")
		return err
	}
	return nil
}

// Generation returns the current invalidation generation of the set, 0 if never invalidated.
func (c *Set[T]) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetIfGeneration stores value only if the generation of the set is still gen. It reports
// whether the value was stored.
func (c *Set[T]) SetIfGeneration(ctx context.Context, key string, value *T, expire time.Duration, gen int64) (bool, error) {
	key = c.key(key)
	b, err := msgpack.Marshal(value)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to marshal value with msgpack")
		return false, err
	}
	stored, err := setIfGeneration.Run(ctx, c.client, []string{c.genKey, key}, gen, b, expire.Milliseconds()).Int()
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to set value to redis")
		return false, err
	}
	return stored == 1, nil
}

// MutexGetSet gets value from cache and writes to dest, or if the key does not exist, it executes valueFunc
// to get the value, sets it to cache and writes it to dest. A redis failure on either side degrades
// to computing the value without caching it. The computed value is not cached when the set was
// invalidated while valueFunc ran.
// The first return value reports whether the value was calculated (true) or read from redis (false).
func (c *Set[T]) MutexGetSet(ctx context.Context, key string, dest *T, valueFunc func() (*T, error), expire time.Duration) (bool, error) {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return false, nil
	}

	c.m.Lock()
	defer c.m.Unlock()
	if err := c.Get(ctx, key, dest); err == nil {
		return false, nil
	}

	gen, genErr := c.Generation(ctx)
	value, err := valueFunc()
	if err != nil {
		return true, err
	}
	if genErr == nil {
		if stored, _ := c.SetIfGeneration(ctx, key, value, expire, gen); !stored {
			log.Debug().Str("key", c.key(key)).Msg("skipped caching value computed across an invalidation")
		}
	}
	*dest = *value
	return true, nil
}

func (c *Set[T]) Delete(ctx context.Context, key string) error {
	key = c.key(key)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to delete value from redis")
		return err
	}
	return nil
}

// DeleteWhere bumps the generation of the set, then deletes every key for which match returns
// true. Keys are passed without the set prefix.
func (c *Set[T]) DeleteWhere(ctx context.Context, match func(key string) bool) (int, error) {
	if err := c.client.Incr(ctx, c.genKey).Err(); err != nil {
		log.Error().Err(err).Str("key", c.genKey).Msg("failed to bump cache generation")
		return 0, err
	}

	iter := c.client.Scan(ctx, 0, c.prefix+"*", 500).Iterator()
	deleted := 0
	for iter.Next(ctx) {
		full := iter.Val()
		if !match(strings.TrimPrefix(full, c.prefix)) {
			continue
		}
		if err := c.client.Del(ctx, full).Err(); err != nil {
			log.Error().Err(err).Str("key", full).Msg("failed to delete value from redis")
			return deleted, err
		}
		deleted++
	}
	return deleted, iter.Err()
}
