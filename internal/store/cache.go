package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ReqFilter/internal/logger"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "record:"

// Cached keeps lookup results in Redis for ttl. Misses and NotFound results
// always go to the wrapped store. FindOne and FindMany return records decoded
// from their cached JSON on hits and misses alike; FindIn is passed through.
type Cached struct {
	next RecordStore
	rdb  redis.Cmdable
	ttl  time.Duration
}

func NewCached(next RecordStore, rdb redis.Cmdable, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Cached{next: next, rdb: rdb, ttl: ttl}
}

func cacheKey(kind, model, field string, value any) string {
	return fmt.Sprintf("%s%s:%s:%s:%v", cachePrefix, kind, model, field, value)
}

func decodeRecords(raw []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(dst)
}

func (c *Cached) load(ctx context.Context, key string, dst any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("record_cache_get_failed", map[string]any{"key": key, "error": err.Error()})
		}
		return false
	}
	if err := decodeRecords(raw, dst); err != nil {
		logger.Warn("record_cache_corrupt", map[string]any{"key": key, "error": err.Error()})
		return false
	}
	return true
}

// store saves v and reads it back into dst, so a fresh lookup has the same
// value types as a later cache hit (numbers as json.Number, times as strings).
func (c *Cached) store(ctx context.Context, key string, v, dst any) bool {
	data, err := json.Marshal(v)
	if err == nil {
		err = decodeRecords(data, dst)
	}
	if err != nil {
		logger.Warn("record_cache_marshal_failed", map[string]any{"key": key, "error": err.Error()})
		return false
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Warn("record_cache_set_failed", map[string]any{"key": key, "error": err.Error()})
	}
	return true
}

func (c *Cached) FindOne(ctx context.Context, model, field string, value any) (Record, error) {
	key := cacheKey("one", model, field, value)
	var rec Record
	if c.load(ctx, key, &rec) {
		return rec, nil
	}
	fresh, err := c.next.FindOne(ctx, model, field, value)
	if err != nil {
		return nil, err
	}
	if !c.store(ctx, key, fresh, &rec) {
		return fresh, nil
	}
	return rec, nil
}

func (c *Cached) FindMany(ctx context.Context, model, field string, value any) ([]Record, error) {
	key := cacheKey("many", model, field, value)
	var recs []Record
	if c.load(ctx, key, &recs) {
		return recs, nil
	}
	fresh, err := c.next.FindMany(ctx, model, field, value)
	if err != nil {
		return nil, err
	}
	if !c.store(ctx, key, fresh, &recs) {
		return fresh, nil
	}
	return recs, nil
}

// FindIn is not cached: the value set varies too much per request.
func (c *Cached) FindIn(ctx context.Context, model, field string, values []any) ([]Record, error) {
	return c.next.FindIn(ctx, model, field, values)
}

// Flush удаляет все закэшированные записи (record:*).
func (c *Cached) Flush(ctx context.Context) (int, error) {
	n := 0
	iter := c.rdb.Scan(ctx, 0, cachePrefix+"*", 1000).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if err := c.rdb.Del(ctx, key).Err(); err != nil {
			return n, fmt.Errorf("failed to delete key %s: %w", key, err)
		}
		n++
	}
	if err := iter.Err(); err != nil {
		return n, fmt.Errorf("scan error: %w", err)
	}
	return n, nil
}
