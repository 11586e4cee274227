package keyvaluemock

import (
	"context"
	"sync"

	"github.com/rwool/visitor-counter/pkg/service/keyvalue"
)

// KeyValueMock is a mock implementation of the keyvalue.KeyValue type.
//
// Setting Err makes every operation fail with it, simulating a store that
// cannot be reached.
type KeyValueMock struct {
	counters *sync.Map

	mu  sync.Mutex
	err error
}

// Ensure KeyValueMock implements the KeyValue interface.
var _ keyvalue.KeyValue = (*KeyValueMock)(nil)

// New returns a new KeyValueMock.
func New() *KeyValueMock {
	return &KeyValueMock{counters: new(sync.Map)}
}

type counter struct {
	i  int64
	mu sync.Mutex
}

// Fail makes subsequent calls return err. A nil err restores normal behavior.
func (k *KeyValueMock) Fail(err error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.err = err
}

func (k *KeyValueMock) failure(key string) error {
	if len(key) == 0 {
		return keyvalue.ErrInvalidKey
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.err
}

func (k *KeyValueMock) getCounter(key string) *counter {
	v, ok := k.counters.Load(key)
	if !ok {
		v, _ = k.counters.LoadOrStore(key, &counter{})
	}
	return v.(*counter)
}

// SetCounter sets the value of the counter for key.
func (k *KeyValueMock) SetCounter(ctx context.Context, key string, value int64) error {
	if err := k.failure(key); err != nil {
		return err
	}
	c := k.getCounter(key)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.i = value
	return nil
}

// GetCounter gets the current value of the counter for key.
func (k *KeyValueMock) GetCounter(ctx context.Context, key string) (int64, error) {
	if err := k.failure(key); err != nil {
		return 0, err
	}
	c := k.getCounter(key)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.i, nil
}

// IncrementCounter increments the value of the counter for key.
func (k *KeyValueMock) IncrementCounter(ctx context.Context, key string) (int64, error) {
	if err := k.failure(key); err != nil {
		return 0, err
	}
	c := k.getCounter(key)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.i++
	return c.i, nil
}
