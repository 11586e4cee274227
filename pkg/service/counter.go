// Package service implements the business logic for the visitor counter.
package service

import (
	"context"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"

	"github.com/rwool/visitor-counter/pkg/service/keyvalue"
)

// DefaultKey is the key of the visitor counter record.
const DefaultKey = "visitor-counter"

// CounterService is the user accessible service.
type CounterService interface {
	// IncrementVisitors records one visit and returns the new total.
	IncrementVisitors(ctx context.Context) (VisitorCount, error)
	// AllowedOrigin is the origin permitted to read responses.
	AllowedOrigin() string
}

// VisitorCount is the response for a recorded visit.
type VisitorCount struct {
	Count int64 `json:"visitor-counter"`
}

// Config contains the settings of a CounterService.
type Config struct {
	// Key identifies the counter record in the store.
	Key string
	// AllowedOrigin is returned in the Access-Control-Allow-Origin header.
	AllowedOrigin string
}

// Validate checks that all required settings are present.
func (c Config) Validate() error {
	if c.Key == "" {
		return errors.New("missing counter key")
	}
	if c.AllowedOrigin == "" {
		return errors.New("missing allowed origin")
	}
	return nil
}

type counterService struct {
	conf Config
	kv   keyvalue.KeyValue
	l    log.Logger
}

// IncrementVisitors issues a single atomic increment of the visitor counter.
//
// Store failures are returned as is; there is no retry and no fallback value.
func (c *counterService) IncrementVisitors(ctx context.Context) (VisitorCount, error) {
	v, err := c.kv.IncrementCounter(ctx, c.conf.Key)
	if err != nil {
		_ = level.Error(c.l).Log("message", "unable to increment visitor counter", "key", c.conf.Key, "err", err)
		return VisitorCount{}, errors.Wrap(err, "unable to increment visitor counter")
	}
	_ = level.Debug(c.l).Log("message", "visitor counter incremented", "key", c.conf.Key, "count", v)
	return VisitorCount{Count: v}, nil
}

func (c *counterService) AllowedOrigin() string {
	return c.conf.AllowedOrigin
}

func newCounterService(conf Config, kv keyvalue.KeyValue, l log.Logger) (*counterService, error) {
	if err := conf.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}
	if kv == nil {
		return nil, errors.New("nil key value store")
	}
	if l == nil {
		l = log.NewNopLogger()
	}
	return &counterService{
		conf: conf,
		kv:   kv,
		l:    l,
	}, nil
}

// NewCounterService returns a CounterService backed by kv.
func NewCounterService(conf Config, kv keyvalue.KeyValue, l log.Logger) (CounterService, error) {
	s, err := newCounterService(conf, kv, l)
	if err != nil {
		return nil, err
	}
	return s, nil
}
