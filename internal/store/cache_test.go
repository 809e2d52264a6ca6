package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
)

// mapRedis keeps Get/Set in a map; other commands are not used by Cached
// lookups.
type mapRedis struct {
	redis.Cmdable
	data map[string]string
}

func (m *mapRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mapRedis) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	m.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func TestCached_SameTypesOnMissAndHit(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	mem := NewMemory().Add("User",
		Record{"id": int64(5), "team": "core", "created_at": created},
		Record{"id": int64(6), "team": "core", "created_at": created},
	)
	rdb := &mapRedis{data: map[string]string{}}
	cached := NewCached(mem, rdb, time.Minute)

	fresh, err := cached.FindOne(ctx, "User", "id", 5)
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if _, ok := rdb.data["record:one:User:id:5"]; !ok {
		t.Fatalf("record not cached: %v", rdb.data)
	}
	hit, err := cached.FindOne(ctx, "User", "id", 5)
	if err != nil {
		t.Fatalf("cached FindOne: %v", err)
	}
	if diff := cmp.Diff(fresh, hit); diff != "" {
		t.Fatalf("miss and hit differ (-miss +hit):\n%s", diff)
	}
	if fresh["id"] != json.Number("5") {
		t.Fatalf("id = %#v, want json.Number", fresh["id"])
	}

	many, err := cached.FindMany(ctx, "User", "team", "core")
	if err != nil {
		t.Fatalf("FindMany: %v", err)
	}
	again, err := cached.FindMany(ctx, "User", "team", "core")
	if err != nil {
		t.Fatalf("cached FindMany: %v", err)
	}
	if diff := cmp.Diff(many, again); diff != "" {
		t.Fatalf("miss and hit differ (-miss +hit):\n%s", diff)
	}
}

func TestCached_NotFoundIsNotCached(t *testing.T) {
	rdb := &mapRedis{data: map[string]string{}}
	cached := NewCached(NewMemory().Add("User"), rdb, time.Minute)
	if _, err := cached.FindOne(context.Background(), "User", "id", 1); err == nil {
		t.Fatalf("expected ErrNotFound")
	}
	if len(rdb.data) != 0 {
		t.Fatalf("not-found result was cached: %v", rdb.data)
	}
}
