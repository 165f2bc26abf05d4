package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client), mr
}

func TestPutAndGet(t *testing.T) {
	t.Parallel()
	store, mr := newTestStore(t)
	ctx := context.Background()

	rec := Record{
		Subject:   "999",
		Provider:  "kakao",
		LoginTime: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Put(ctx, rec, 7*24*time.Hour))

	// Cached under the subject-scoped key.
	assert.True(t, mr.Exists("session:999"))

	got, err := store.Get(ctx, "999")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.Subject, got.Subject)
	assert.Equal(t, rec.Provider, got.Provider)
	assert.True(t, rec.LoginTime.Equal(got.LoginTime))
}

func TestGetMissingIsNotAnError(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	got, err := store.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPutRejectsInvalidRecords(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	err := store.Put(ctx, Record{Provider: "kakao"}, time.Hour)
	assert.Error(t, err, "subject is required")

	err = store.Put(ctx, Record{Subject: "999"}, 0)
	assert.Error(t, err, "ttl must be positive")
}

func TestPutOverwritesOnRelogin(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	first := Record{Subject: "999", Provider: "kakao", LoginTime: time.Now()}
	require.NoError(t, store.Put(ctx, first, time.Hour))

	second := Record{Subject: "999", Provider: "naver", LoginTime: time.Now()}
	require.NoError(t, store.Put(ctx, second, time.Hour))

	got, err := store.Get(ctx, "999")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "naver", got.Provider)
}

func TestRecordExpiresByTTL(t *testing.T) {
	t.Parallel()
	store, mr := newTestStore(t)
	ctx := context.Background()

	rec := Record{Subject: "999", Provider: "kakao", LoginTime: time.Now()}
	require.NoError(t, store.Put(ctx, rec, time.Minute))

	mr.FastForward(2 * time.Minute)

	got, err := store.Get(ctx, "999")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDelete(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	rec := Record{Subject: "999", Provider: "kakao", LoginTime: time.Now()}
	require.NoError(t, store.Put(ctx, rec, time.Hour))
	require.NoError(t, store.Delete(ctx, "999"))

	got, err := store.Get(ctx, "999")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting an absent key is not an error.
	assert.NoError(t, store.Delete(ctx, "999"))
}
