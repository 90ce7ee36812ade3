package utils

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelMap(t *testing.T) {
	t.Parallel()

	t.Run("keeps input order", func(t *testing.T) {
		items := []int{1, 2, 3, 4, 5, 6, 7, 8}
		results, err := ParallelMap(context.Background(), items, 3, func(ctx context.Context, item int) (int, error) {
			// later items finish first
			time.Sleep(time.Duration(10-item) * time.Millisecond)
			return item * 2, nil
		})
		require.NoError(t, err)
		assert.Equal(t, []int{2, 4, 6, 8, 10, 12, 14, 16}, results)
	})

	t.Run("empty input", func(t *testing.T) {
		results, err := ParallelMap(context.Background(), []string{}, 4, func(ctx context.Context, s string) (string, error) {
			return s, nil
		})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("respects worker limit", func(t *testing.T) {
		var inFlight, peak int32
		items := make([]int, 20)
		_, err := ParallelMap(context.Background(), items, 4, func(ctx context.Context, _ int) (int, error) {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return 0, nil
		})
		require.NoError(t, err)
		assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(4))
	})

	t.Run("zero workers defaults to one", func(t *testing.T) {
		results, err := ParallelMap(context.Background(), []int{1, 2}, 0, func(ctx context.Context, i int) (int, error) {
			return i, nil
		})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, results)
	})

	t.Run("first error cancels and discards results", func(t *testing.T) {
		boom := errors.New("fetch failed")
		var completed int32
		items := []int{0, 1, 2, 3}
		start := time.Now()

		results, err := ParallelMap(context.Background(), items, len(items), func(ctx context.Context, item int) (int, error) {
			if item == 0 {
				return 0, boom
			}
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(2 * time.Second):
				atomic.AddInt32(&completed, 1)
				return item, nil
			}
		})

		assert.ErrorIs(t, err, boom)
		assert.Nil(t, results)
		assert.Zero(t, atomic.LoadInt32(&completed))
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("parent context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := ParallelMap(ctx, []int{1, 2, 3}, 2, func(ctx context.Context, i int) (int, error) {
			return i, nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestParallelForEach(t *testing.T) {
	t.Parallel()

	var sum int64
	err := ParallelForEach(context.Background(), []int64{1, 2, 3, 4}, 2, func(ctx context.Context, n int64) error {
		atomic.AddInt64(&sum, n)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), sum)

	err = ParallelForEach(context.Background(), []int{1, 2, 3}, 2, func(ctx context.Context, n int) error {
		if n == 2 {
			return errors.New("error on 2")
		}
		return nil
	})
	assert.EqualError(t, err, "error on 2")
}
