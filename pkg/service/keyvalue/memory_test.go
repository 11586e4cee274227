package keyvalue_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/rwool/visitor-counter/pkg/service/keyvalue"
)

func TestMemoryIncrementAndGet(t *testing.T) {
	t.Parallel()
	kv := keyvalue.NewMemoryAdapter()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	v, err := kv.GetCounter(ctx, t.Name())
	require.NoError(t, err, "Missing counter should not error.")
	assert.Equal(t, int64(0), v, "Missing counter should read as 0.")

	for i := int64(1); i <= 3; i++ {
		v, err := kv.IncrementCounter(ctx, t.Name())
		require.NoError(t, err, "Should increment counter with no error.")
		assert.Equal(t, i, v, "Increment should return the new value.")
	}

	require.NoError(t, kv.SetCounter(ctx, t.Name(), 41), "Should set counter.")
	v, err = kv.IncrementCounter(ctx, t.Name())
	require.NoError(t, err)
	assert.Equal(t, int64(42), v, "Increment should continue from set value.")
}

func TestMemoryConcurrentIncrements(t *testing.T) {
	t.Parallel()
	const n = 200
	kv := keyvalue.NewMemoryAdapter()
	ctx := context.Background()

	var group errgroup.Group
	for i := 0; i < n; i++ {
		group.Go(func() error {
			_, err := kv.IncrementCounter(ctx, "shared")
			return err
		})
	}
	require.NoError(t, group.Wait(), "Concurrent increments should not error.")

	v, err := kv.GetCounter(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, int64(n), v, "No increments should be lost.")
}

func TestMemoryInvalidKey(t *testing.T) {
	t.Parallel()
	kv := keyvalue.NewMemoryAdapter()
	ctx := context.Background()

	_, err := kv.IncrementCounter(ctx, "")
	assert.Equal(t, keyvalue.ErrInvalidKey, err)
	_, err = kv.GetCounter(ctx, "")
	assert.Equal(t, keyvalue.ErrInvalidKey, err)
	assert.Equal(t, keyvalue.ErrInvalidKey, kv.SetCounter(ctx, "", 1))
}
