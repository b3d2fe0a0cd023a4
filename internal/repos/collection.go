package repos

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"zonagamer/internal/normalize"
)

// InitState tracks lazy seeding of a collection.
type InitState int32

const (
	Uninitialized InitState = iota
	Seeding
	Ready
)

func (s InitState) String() string {
	switch s {
	case Seeding:
		return "seeding"
	case Ready:
		return "ready"
	}
	return "uninitialized"
}

type options struct {
	latency    time.Duration
	bcryptCost int
	now        func() time.Time
}

// Option tunes a local store.
type Option func(*options)

// WithLatency delays every read and write, mimicking a remote round trip.
func WithLatency(d time.Duration) Option { return func(o *options) { o.latency = d } }

// WithBcryptCost sets the cost used to hash local user passwords.
func WithBcryptCost(cost int) Option { return func(o *options) { o.bcryptCost = cost } }

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// collection stores a JSON array under one key, seeding it on first use.
type collection[T any] struct {
	kv      KeyValueStore
	key     string
	decode  func(normalize.Record) T
	seed    func(context.Context) ([]T, error)
	latency time.Duration

	state atomic.Int32
	group singleflight.Group
}

func (c *collection[T]) State() InitState { return InitState(c.state.Load()) }

// initialize seeds the key when it holds no value. Concurrent first callers
// share one seed; a failed seed leaves the collection uninitialized.
func (c *collection[T]) initialize(ctx context.Context) error {
	if c.State() == Ready {
		return nil
	}
	_, err, _ := c.group.Do(c.key, func() (any, error) {
		if c.State() == Ready {
			return nil, nil
		}
		_, ok, err := c.kv.Get(c.key)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", c.key)
		}
		if ok {
			c.state.Store(int32(Ready))
			return nil, nil
		}
		c.state.Store(int32(Seeding))
		items, err := c.seed(ctx)
		if err != nil {
			c.state.Store(int32(Uninitialized))
			return nil, errors.Wrapf(err, "seed %s", c.key)
		}
		if err := c.write(items); err != nil {
			c.state.Store(int32(Uninitialized))
			return nil, errors.Wrapf(err, "persist seed %s", c.key)
		}
		c.state.Store(int32(Ready))
		return nil, nil
	})
	return err
}

func (c *collection[T]) wait(ctx context.Context) error {
	if c.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(c.latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// read decodes the stored array; a missing or corrupted value reads as empty.
func (c *collection[T]) read() []T {
	raw, ok, err := c.kv.Get(c.key)
	if err != nil || !ok {
		return []T{}
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return []T{}
	}
	recs := normalize.List(v)
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		out = append(out, c.decode(r))
	}
	return out
}

func (c *collection[T]) write(items []T) error {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.kv.Set(c.key, string(b))
}

// load runs the shared prologue of every operation.
func (c *collection[T]) load(ctx context.Context) ([]T, error) {
	if err := c.initialize(ctx); err != nil {
		return nil, err
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.read(), nil
}
