// Package redistest implements support code for testing with Redis.
package redistest

import (
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis"
)

// Connect connects to the Redis server named by REDIS_ADDRESS and returns the
// Client object. The test is skipped when no server is configured.
func Connect(t *testing.T) *redis.Client {
	t.Helper()
	address := os.Getenv("REDIS_ADDRESS")
	if address == "" {
		t.Skip("Missing Redis address")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         address,
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           0,
		MaxRetries:   3,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err := client.Ping().Err(); err != nil {
		t.Skipf("Redis unavailable at %s: %s", address, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}
