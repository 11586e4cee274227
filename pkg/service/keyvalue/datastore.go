package keyvalue

import (
	"context"

	"cloud.google.com/go/datastore"
	"github.com/pkg/errors"
)

// DefaultDatastoreKind is the entity kind used for counters.
const DefaultDatastoreKind = "Counter"

// Attempts per increment before Datastore gives up with
// datastore.ErrConcurrentTransaction. Every visit contends on the same entity.
const transactionAttempts = 10

type counterEntity struct {
	Count int64 `datastore:"count,noindex"`
}

// Ensure DatastoreAdapter implements the KeyValue interface.
var _ KeyValue = (*DatastoreAdapter)(nil)

// DatastoreAdapter stores counters as Cloud Datastore entities named by the
// counter key.
//
// Increments run inside a transaction; Datastore retries the transaction
// function on contention so the read-modify-write is atomic.
type DatastoreAdapter struct {
	c    *datastore.Client
	kind string
}

// NewDatastoreAdapter creates an adapter storing counters under kind. An empty
// kind selects DefaultDatastoreKind.
func NewDatastoreAdapter(c *datastore.Client, kind string) *DatastoreAdapter {
	if c == nil {
		panic("nil datastore client")
	}
	if kind == "" {
		kind = DefaultDatastoreKind
	}
	return &DatastoreAdapter{c: c, kind: kind}
}

func (d *DatastoreAdapter) key(key string) *datastore.Key {
	return datastore.NameKey(d.kind, key, nil)
}

// SetCounter sets the counter with the given key to value.
func (d *DatastoreAdapter) SetCounter(ctx context.Context, key string, value int64) error {
	if len(key) == 0 {
		return ErrInvalidKey
	}
	_, err := d.c.Put(ctx, d.key(key), &counterEntity{Count: value})
	return errors.Wrapf(err, "failed to set number for key: %q", key)
}

// GetCounter gets the current value of a counter.
func (d *DatastoreAdapter) GetCounter(ctx context.Context, key string) (int64, error) {
	if len(key) == 0 {
		return 0, ErrInvalidKey
	}
	var rec counterEntity
	err := d.c.Get(ctx, d.key(key), &rec)
	if err == datastore.ErrNoSuchEntity {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "failed to get number for key: %q", key)
	}
	return rec.Count, nil
}

// IncrementCounter increments the counter with the given key and returns the
// incremented value.
func (d *DatastoreAdapter) IncrementCounter(ctx context.Context, key string) (int64, error) {
	if len(key) == 0 {
		return 0, ErrInvalidKey
	}
	k := d.key(key)
	var value int64
	_, err := d.c.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		// May run more than once when transactions collide.
		var rec counterEntity
		if err := tx.Get(k, &rec); err != nil && err != datastore.ErrNoSuchEntity {
			return err
		}
		rec.Count++
		if _, err := tx.Put(k, &rec); err != nil {
			return err
		}
		value = rec.Count
		return nil
	}, datastore.MaxAttempts(transactionAttempts))
	if err != nil {
		return 0, errors.Wrapf(err, "failed to increment value for key %q", key)
	}
	return value, nil
}
