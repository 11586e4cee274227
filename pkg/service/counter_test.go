package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/rwool/visitor-counter/pkg/internal/keyvaluemock"
	"github.com/rwool/visitor-counter/pkg/service"
)

var testConfig = service.Config{
	Key:           service.DefaultKey,
	AllowedOrigin: "https://resume.example.com",
}

func TestIncrementVisitors(t *testing.T) {
	t.Parallel()
	kv := keyvaluemock.New()
	s, err := service.NewCounterService(testConfig, kv, log.NewNopLogger())
	require.NoError(t, err, "Service should be created.")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	first, err := s.IncrementVisitors(ctx)
	require.NoError(t, err, "Increment should succeed.")
	assert.True(t, first.Count >= 0, "Count should be non-negative.")

	second, err := s.IncrementVisitors(ctx)
	require.NoError(t, err, "Increment should succeed.")
	assert.Equal(t, first.Count+1, second.Count, "Sequential calls should differ by one.")

	stored, err := kv.GetCounter(ctx, service.DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, second.Count, stored, "Store should hold the returned count.")
	assert.Equal(t, testConfig.AllowedOrigin, s.AllowedOrigin())
}

func TestIncrementVisitorsConcurrent(t *testing.T) {
	t.Parallel()
	const n = 100
	kv := keyvaluemock.New()
	s, err := service.NewCounterService(testConfig, kv, nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, kv.SetCounter(ctx, service.DefaultKey, 25))

	var group errgroup.Group
	for i := 0; i < n; i++ {
		group.Go(func() error {
			_, err := s.IncrementVisitors(ctx)
			return err
		})
	}
	require.NoError(t, group.Wait(), "Concurrent increments should succeed.")

	v, err := kv.GetCounter(ctx, service.DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, int64(25+n), v, "No increments should be lost.")
}

func TestIncrementVisitorsStoreFailure(t *testing.T) {
	t.Parallel()
	kv := keyvaluemock.New()
	s, err := service.NewCounterService(testConfig, kv, log.NewNopLogger())
	require.NoError(t, err)

	denied := errors.New("access denied")
	kv.Fail(denied)
	_, err = s.IncrementVisitors(context.Background())
	require.Error(t, err, "Store failure should be propagated.")
	assert.Equal(t, denied, errors.Cause(err))

	kv.Fail(nil)
	v, err := kv.GetCounter(context.Background(), service.DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v, "Failed call should not change the counter.")
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	kv := keyvaluemock.New()

	_, err := service.NewCounterService(service.Config{AllowedOrigin: "https://a"}, kv, nil)
	assert.Error(t, err, "Missing key should be rejected.")

	_, err = service.NewCounterService(service.Config{Key: "k"}, kv, nil)
	assert.Error(t, err, "Missing origin should be rejected.")

	_, err = service.NewCounterService(testConfig, nil, nil)
	assert.Error(t, err, "Missing store should be rejected.")
}
