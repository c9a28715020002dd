// server/cache.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TilBlechschmidt/AviationEmergencyLocations/log"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// Cache stores encoded responses. Lookup failures are reported as misses;
// a cache is never allowed to fail a request.
type Cache interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, bool)
	Add(ctx context.Context, key string, value []byte)
	Len() int
}

///////////////////////////////////////////////////////////////////////////
// memoryCache

type memoryCache struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemoryCache returns an in-process LRU cache holding up to size
// entries; a zero ttl keeps entries until they are evicted.
func NewMemoryCache(size int, ttl time.Duration) Cache {
	return &memoryCache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (m *memoryCache) Name() string { return "memory" }

func (m *memoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	return m.lru.Get(key)
}

func (m *memoryCache) Add(ctx context.Context, key string, value []byte) {
	m.lru.Add(key, value)
}

func (m *memoryCache) Len() int {
	return m.lru.Len()
}

///////////////////////////////////////////////////////////////////////////
// redisCache

const redisKeyPrefix = "elsa:"

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	lg     *log.Logger
}

// OpenRedis returns a client for the given server or nil if addr is empty.
func OpenRedis(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

// NewRedisCache returns a cache shared between service instances.
func NewRedisCache(client *redis.Client, ttl time.Duration, lg *log.Logger) Cache {
	return &redisCache{client: client, ttl: ttl, lg: lg}
}

func (r *redisCache) Name() string { return "redis" }

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.lg.Warnf("%s: redis get: %v", key, err)
		}
		return nil, false
	}
	return b, true
}

func (r *redisCache) Add(ctx context.Context, key string, value []byte) {
	if err := r.client.Set(ctx, redisKeyPrefix+key, value, r.ttl).Err(); err != nil {
		r.lg.Warnf("%s: redis set: %v", key, err)
	}
}

// Len returns the number of keys in the selected database, or -1 if the
// server can't be reached.
func (r *redisCache) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	n, err := r.client.DBSize(ctx).Result()
	if err != nil {
		return -1
	}
	return int(n)
}

///////////////////////////////////////////////////////////////////////////
// tieredCache

// tieredCache checks its layers in order and copies hits from later
// layers into the earlier ones.
type tieredCache struct {
	layers  []Cache
	metrics *Metrics
}

func newTieredCache(metrics *Metrics, layers ...Cache) *tieredCache {
	return &tieredCache{layers: layers, metrics: metrics}
}

func (t *tieredCache) Name() string { return "tiered" }

func (t *tieredCache) Get(ctx context.Context, key string) ([]byte, bool) {
	for i, c := range t.layers {
		b, ok := c.Get(ctx, key)
		t.metrics.cacheLookup(c.Name(), ok)
		if ok {
			for _, prev := range t.layers[:i] {
				prev.Add(ctx, key, b)
			}
			return b, true
		}
	}
	return nil, false
}

func (t *tieredCache) Add(ctx context.Context, key string, value []byte) {
	for _, c := range t.layers {
		c.Add(ctx, key, value)
	}
}

// Len returns the number of entries of the first layer.
func (t *tieredCache) Len() int {
	if len(t.layers) == 0 {
		return 0
	}
	return t.layers[0].Len()
}

func (t *tieredCache) String() string {
	s := ""
	for i, c := range t.layers {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s: %d", c.Name(), c.Len())
	}
	return s
}

func reachabilityKey(aircraftID string, altitude float64) string {
	return fmt.Sprintf("reachability/%s/%g", aircraftID, altitude)
}

func linesKey(aircraftID string) string {
	return "lines/" + aircraftID
}
