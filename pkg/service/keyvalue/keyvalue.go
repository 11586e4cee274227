// Package keyvalue implements support for durable counters identified by a
// key.
package keyvalue

import (
	"context"

	"github.com/pkg/errors"
)

// ErrInvalidKey is returned when an operation is given an empty key.
var ErrInvalidKey = errors.New("invalid key")

// KeyValue wraps the set of methods for manipulating counters identified by a
// given key.
//
// IncrementCounter must be a single atomic operation in the backing store so
// that concurrent callers never lose updates. A counter that does not exist
// yet is treated as 0.
type KeyValue interface {
	IncrementCounter(ctx context.Context, key string) (int64, error)
	GetCounter(ctx context.Context, key string) (int64, error)
	SetCounter(ctx context.Context, key string, value int64) error
}
