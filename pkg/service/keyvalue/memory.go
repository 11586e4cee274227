package keyvalue

import (
	"context"
	"sync"
	"sync/atomic"
)

// Ensure MemoryAdapter implements the KeyValue interface.
var _ KeyValue = (*MemoryAdapter)(nil)

// MemoryAdapter keeps counters in process memory.
//
// Values are lost when the process exits, so this is only suitable for local
// development.
type MemoryAdapter struct {
	counters sync.Map
}

// NewMemoryAdapter returns an empty MemoryAdapter.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{}
}

func (m *MemoryAdapter) counter(key string) *int64 {
	v, ok := m.counters.Load(key)
	if !ok {
		v, _ = m.counters.LoadOrStore(key, new(int64))
	}
	return v.(*int64)
}

// SetCounter sets the counter with the given key to value.
func (m *MemoryAdapter) SetCounter(_ context.Context, key string, value int64) error {
	if len(key) == 0 {
		return ErrInvalidKey
	}
	atomic.StoreInt64(m.counter(key), value)
	return nil
}

// GetCounter gets the current value of a counter.
func (m *MemoryAdapter) GetCounter(_ context.Context, key string) (int64, error) {
	if len(key) == 0 {
		return 0, ErrInvalidKey
	}
	return atomic.LoadInt64(m.counter(key)), nil
}

// IncrementCounter increments the counter with the given key and returns the
// incremented value.
func (m *MemoryAdapter) IncrementCounter(_ context.Context, key string) (int64, error) {
	if len(key) == 0 {
		return 0, ErrInvalidKey
	}
	return atomic.AddInt64(m.counter(key), 1), nil
}
