package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zafarimam8588/ayo-portal/pkg/async"
)

func TestGo(t *testing.T) {
	t.Parallel()

	t.Run("resolves with the function result", func(t *testing.T) {
		t.Parallel()
		f := async.Go(context.Background(), 21, func(_ context.Context, n int) (int, error) {
			return n * 2, nil
		})
		result, err := f.Await()
		require.NoError(t, err)
		assert.Equal(t, 42, result)
	})

	t.Run("propagates the function error", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		f := async.Go(context.Background(), 0, func(_ context.Context, _ int) (int, error) {
			return 0, boom
		})
		_, err := f.Await()
		assert.ErrorIs(t, err, boom)
	})

	t.Run("pre-canceled context skips the function", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		f := async.Go(ctx, 0, func(_ context.Context, _ int) (int, error) {
			called = true
			return 0, nil
		})
		_, err := f.Await()
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})

	t.Run("done reports completion", func(t *testing.T) {
		t.Parallel()
		release := make(chan struct{})
		f := async.Go(context.Background(), 0, func(_ context.Context, _ int) (int, error) {
			<-release
			return 0, nil
		})
		assert.False(t, f.Done())
		close(release)
		_, err := f.Await()
		require.NoError(t, err)
		assert.True(t, f.Done())
	})
}

func TestWaitAll(t *testing.T) {
	t.Parallel()

	t.Run("collects every result", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		double := func(_ context.Context, n int) (int, error) { return n * 2, nil }

		results, err := async.WaitAll(
			async.Go(ctx, 1, double),
			async.Go(ctx, 2, double),
			async.Go(ctx, 3, double),
		)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 4, 6}, results)
	})

	t.Run("joins errors from every failed future", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		first := errors.New("first")
		second := errors.New("second")

		_, err := async.WaitAll(
			async.Go(ctx, 0, func(_ context.Context, _ int) (int, error) { return 0, first }),
			async.Go(ctx, 0, func(_ context.Context, _ int) (int, error) { return 1, nil }),
			async.Go(ctx, 0, func(_ context.Context, _ int) (int, error) { return 0, second }),
		)
		assert.ErrorIs(t, err, first)
		assert.ErrorIs(t, err, second)
	})

	t.Run("slow futures still resolve", func(t *testing.T) {
		t.Parallel()
		f := async.Go(context.Background(), 0, func(_ context.Context, _ int) (int, error) {
			time.Sleep(10 * time.Millisecond)
			return 7, nil
		})
		results, err := async.WaitAll(f)
		require.NoError(t, err)
		assert.Equal(t, []int{7}, results)
	})
}
