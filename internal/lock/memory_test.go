package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()

	token, err := l.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)

	assert.ErrorIs(t, l.Release(ctx, "k", "someone-else"), ErrNotOwned)
	require.NoError(t, l.Release(ctx, "k", token))

	_, err = l.Acquire(ctx, "k", time.Minute)
	assert.NoError(t, err)
}

func TestMemoryLocker_Expiry(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	first, err := l.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)

	now = now.Add(time.Second)
	second, err := l.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	assert.ErrorIs(t, l.Release(ctx, "k", first), ErrNotOwned)
}

func TestWithLock_Exclusive(t *testing.T) {
	l := NewMemoryLocker()

	var inside, acquired, rejected int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := WithLock(context.Background(), l, "k", time.Minute, func(ctx context.Context) error {
				if atomic.AddInt32(&inside, 1) != 1 {
					t.Error("two holders inside the critical section")
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			switch {
			case err == nil:
				atomic.AddInt32(&acquired, 1)
			case errors.Is(err, ErrNotAcquired):
				atomic.AddInt32(&rejected, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.GreaterOrEqual(t, acquired, int32(1))
	assert.Equal(t, int32(20), acquired+rejected)
}

func TestWithLock_PropagatesError(t *testing.T) {
	l := NewMemoryLocker()
	boom := errors.New("boom")

	err := WithLock(context.Background(), l, "k", time.Minute, func(ctx context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	// The lock was released.
	_, err = l.Acquire(context.Background(), "k", time.Minute)
	assert.NoError(t, err)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "lock:register:alice", Keys.Registration("Alice"))
	assert.Equal(t, "lock:publish:abc", Keys.Publish("abc"))
}
