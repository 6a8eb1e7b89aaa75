package cache

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

// Singular is a single in-process value with an expiry. It also remembers the last value ever
// set, which survives expiry and Delete, for callers that prefer stale data to none.
type Singular[T any] struct {
	// m serializes the slow path of MutexGetSet
	m sync.Mutex

	key string

	c *cache.Cache

	lastMu sync.RWMutex
	last   *T
}

func NewSingular[T any](key string) *Singular[T] {
	return &Singular[T]{
		key: key,
		c:   cache.New(cache.NoExpiration, time.Minute*10),
	}
}

func (c *Singular[T]) Get(dest *T) error {
	result, ok := c.c.Get(c.key)
	if !ok {
		return ErrNotFound
	}
	*dest = result.(T)
	return nil
}

func (c *Singular[T]) Set(value T, expire time.Duration) {
	c.c.Set(c.key, value, expire)

	c.lastMu.Lock()
	c.last = &value
	c.lastMu.Unlock()
}

// Stale returns the last value ever set, regardless of expiry.
func (c *Singular[T]) Stale() (T, bool) {
	c.lastMu.RLock()
	defer c.lastMu.RUnlock()
	if c.last == nil {
		var zero T
		return zero, false
	}
	return *c.last, true
}

// MutexGetSet gets value from cache and writes to dest, or if the key does not exist, it executes valueFunc
// (at most once across concurrent callers), caches the value and writes it to dest.
func (c *Singular[T]) MutexGetSet(dest *T, valueFunc func() (T, error), expire time.Duration) error {
	if err := c.Get(dest); err == nil {
		return nil
	}

	c.m.Lock()
	defer c.m.Unlock()
	if err := c.Get(dest); err == nil {
		return nil
	}

	value, err := valueFunc()
	if err != nil {
		log.Error().Err(err).Str("key", c.key).Msg("failed to get value from valueFunc() in MutexGetSet")
		return err
	}
	c.Set(value, expire)
	*dest = value
	return nil
}

// Delete expires the value. Stale still returns it.
func (c *Singular[T]) Delete() {
	c.c.Delete(c.key)
}
