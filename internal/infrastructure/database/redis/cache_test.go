package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
	"github.com/probite-fr/probite/pkg/errors"
)

func TestCacheSetGet(t *testing.T) {
	client, _ := newTestClient(t)
	cache := NewCache(client, logging.NewNopLogger())

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "labels/Q25437", "corruption", time.Minute))

	var label string
	require.NoError(t, cache.Get(ctx, "labels/Q25437", &label))
	assert.Equal(t, "corruption", label)
}

func TestCacheGetMiss(t *testing.T) {
	client, _ := newTestClient(t)
	cache := NewCache(client, logging.NewNopLogger())

	var label string
	err := cache.Get(context.Background(), "labels/absent", &label)
	assert.Equal(t, ErrCacheMiss, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestCacheMGetMSet(t *testing.T) {
	client, _ := newTestClient(t)
	cache := NewCache(client, logging.NewNopLogger())

	ctx := context.Background()
	require.NoError(t, cache.MSet(ctx, map[string]interface{}{
		"labels/Q1": "corruption",
		"labels/Q2": "fraude fiscale",
	}, time.Minute))

	got, err := cache.MGet(ctx, []string{"labels/Q1", "labels/Q2", "labels/Q3"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.JSONEq(t, `"corruption"`, string(got["labels/Q1"]))
	assert.NotContains(t, got, "labels/Q3")
}

func TestCacheGetOrSetLoadsOnce(t *testing.T) {
	client, _ := newTestClient(t)
	cache := NewCache(client, logging.NewNopLogger())

	ctx := context.Background()
	calls := 0
	loader := func(ctx context.Context) (interface{}, error) {
		calls++
		return "trafic d'influence", nil
	}

	var label string
	require.NoError(t, cache.GetOrSet(ctx, "labels/Q1143761", &label, time.Minute, loader))
	assert.Equal(t, "trafic d'influence", label)
	assert.Equal(t, 1, calls)

	// Second call hits the cache.
	label = ""
	require.NoError(t, cache.GetOrSet(ctx, "labels/Q1143761", &label, time.Minute, loader))
	assert.Equal(t, "trafic d'influence", label)
	assert.Equal(t, 1, calls)
}

func TestCacheGetOrSetPropagatesLoaderError(t *testing.T) {
	client, _ := newTestClient(t)
	cache := NewCache(client, logging.NewNopLogger())

	wantErr := errors.New(errors.ErrCodeKGUnavailable, "graph down")
	var label string
	err := cache.GetOrSet(context.Background(), "labels/Q1", &label, time.Minute,
		func(ctx context.Context) (interface{}, error) { return nil, wantErr })
	assert.Equal(t, wantErr, err)
}

func TestCacheDelete(t *testing.T) {
	client, _ := newTestClient(t)
	cache := NewCache(client, logging.NewNopLogger())

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "labels/Q1", "x", time.Minute))
	require.NoError(t, cache.Delete(ctx, "labels/Q1"))

	var label string
	assert.Equal(t, ErrCacheMiss, cache.Get(ctx, "labels/Q1", &label))
}
