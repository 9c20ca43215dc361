package dialogue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	got, err := store.Get(ctx, "call-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	session := NewCallSession("call-1")
	session.Quote.SetCategory(CategoryDomestic)
	require.NoError(t, store.Put(ctx, session))

	got, err = store.Get(ctx, "call-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, CategoryDomestic, got.Quote.ServiceCategory)

	require.NoError(t, store.Delete(ctx, "call-1"))
	got, err = store.Get(ctx, "call-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func newTestRedisStore(t *testing.T, ttl time.Duration) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, ttl)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store := newTestRedisStore(t, time.Hour)
	ctx := context.Background()

	got, err := store.Get(ctx, "call-9")
	require.NoError(t, err)
	assert.Nil(t, got)

	session := NewCallSession("call-9")
	session.Stage = StagePostcode
	session.Quote.SetCategory(CategoryDomestic)
	session.Quote.DomesticServiceType = ServiceDeepClean
	session.BumpAttempt(StagePostcode)
	session.MarkAnswered(StageToilets)
	require.NoError(t, store.Put(ctx, session))

	got, err = store.Get(ctx, "call-9")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, StagePostcode, got.Stage)
	assert.Equal(t, ServiceDeepClean, got.Quote.DomesticServiceType)
	assert.Equal(t, 1, got.Attempt(StagePostcode))
	assert.True(t, got.HasAnswered(StageToilets))

	require.NoError(t, store.Delete(ctx, "call-9"))
	got, err = store.Get(ctx, "call-9")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStorePutRequiresCallID(t *testing.T) {
	store := newTestRedisStore(t, 0)
	assert.Error(t, store.Put(context.Background(), &CallSession{}))
	assert.Error(t, store.Put(context.Background(), nil))
}
