package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewLock_AcquireRelease(t *testing.T) {
	_, client := newTestClient(t)
	lock := NewReviewLock(client)
	ctx := context.Background()

	token, ok, err := lock.Acquire(ctx, "app-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = lock.Acquire(ctx, "app-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while held")

	_, ok, err = lock.Acquire(ctx, "app-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "other applications are independent")

	require.NoError(t, lock.Release(ctx, "app-1", token))

	_, ok, err = lock.Acquire(ctx, "app-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "lock is free after release")
}

func TestReviewLock_Expires(t *testing.T) {
	mr, client := newTestClient(t)
	lock := NewReviewLock(client)
	ctx := context.Background()

	_, ok, err := lock.Acquire(ctx, "app-1", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(31 * time.Second)

	_, ok, err = lock.Acquire(ctx, "app-1", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReviewLock_TokensArePerAcquire(t *testing.T) {
	mr, client := newTestClient(t)
	lock := NewReviewLock(client)
	ctx := context.Background()

	slow, ok, err := lock.Acquire(ctx, "app-1", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	// The slow review outlives its TTL and a second request on the same instance takes over.
	mr.FastForward(31 * time.Second)
	fresh, ok, err := lock.Acquire(ctx, "app-1", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEqual(t, slow, fresh)

	require.NoError(t, lock.Release(ctx, "app-1", slow))
	assert.True(t, mr.Exists("review-lock:app-1"), "stale release must not drop the current holder")

	held, err := mr.Get("review-lock:app-1")
	require.NoError(t, err)
	assert.Equal(t, fresh, held)

	require.NoError(t, lock.Release(ctx, "app-1", fresh))
	assert.False(t, mr.Exists("review-lock:app-1"))
}

func TestReviewLock_ReleaseKeepsForeignLock(t *testing.T) {
	mr, client := newTestClient(t)
	mine := NewReviewLock(client)
	theirs := NewReviewLock(client)
	ctx := context.Background()

	_, ok, err := theirs.Acquire(ctx, "app-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, mine.Release(ctx, "app-1", "not-the-holder"))
	assert.True(t, mr.Exists("review-lock:app-1"), "release must not drop a lock held by another instance")
}

func TestReviewLock_StoreDown(t *testing.T) {
	mr, client := newTestClient(t)
	lock := NewReviewLock(client)
	mr.Close()

	_, _, err := lock.Acquire(context.Background(), "app-1", time.Minute)
	assert.Error(t, err)
}
