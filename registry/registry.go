// Package registry keeps named records behind an access gate
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"github.com/supremind/accessgate/types"
)

// Gate decides if the caller in the context could access a record
type Gate interface {
	Check(context.Context, types.Level) error
	Pay(context.Context, types.Level, types.Credit) (types.Receipt, error)
	Release(context.Context) (types.Receipt, error)
}

// Registry keeps records of type V by name.
// Admins write records, anyone could read them, and paid reads are open to callers paying the price.
type Registry[V any] struct {
	gate Gate
	log  logr.Logger

	mu      sync.RWMutex
	records map[string]V
}

// New creates an empty Registry guarded by gate
func New[V any](gate Gate, l logr.Logger) *Registry[V] {
	return &Registry[V]{
		gate:    gate,
		log:     l,
		records: make(map[string]V),
	}
}

func notFound(name string) error {
	return types.NewAccessError(types.NotFound, "", fmt.Sprintf("record %q", name))
}

// Put creates or replaces a record, admins only
func (r *Registry[V]) Put(ctx context.Context, name string, v V) error {
	if e := r.gate.Check(ctx, types.Admin); e != nil {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.V(4).Info("put record", "name", name)
	r.records[name] = v
	return nil
}

// Delete removes a record, admins only
func (r *Registry[V]) Delete(ctx context.Context, name string) error {
	if e := r.gate.Check(ctx, types.Admin); e != nil {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[name]; !ok {
		return notFound(name)
	}
	r.log.V(4).Info("delete record", "name", name)
	delete(r.records, name)
	return nil
}

// Get returns a record to anyone
func (r *Registry[V]) Get(ctx context.Context, name string) (V, error) {
	var zero V
	if e := r.gate.Check(ctx, types.Public); e != nil {
		return zero, e
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.records[name]
	if !ok {
		return zero, notFound(name)
	}
	return v, nil
}

// GetPaid returns a record to admins, or to callers paying price with the credits attached to the call in ctx.
// Admins need no call, and nothing is charged for unknown records.
// The record is not deleted nor replaced until the payment is settled.
func (r *Registry[V]) GetPaid(ctx context.Context, name string, price types.Credit) (V, types.Receipt, error) {
	var zero V

	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.records[name]

	if _, paying := types.CallFrom(ctx); !paying {
		if e := r.gate.Check(ctx, types.Admin); e != nil {
			return zero, types.Receipt{}, e
		}
		if !ok {
			return zero, types.Receipt{}, notFound(name)
		}
		return v, types.Receipt{}, nil
	}

	if !ok {
		rcpt, e := r.gate.Release(ctx)
		if e != nil {
			return zero, rcpt, fmt.Errorf("release call for unknown record %q: %w", name, e)
		}
		return zero, rcpt, notFound(name)
	}

	rcpt, e := r.gate.Pay(ctx, types.Admin, price)
	if e != nil {
		return zero, rcpt, e
	}
	r.log.V(6).Info("paid read", "name", name, "paid", rcpt.Paid, "consumed", rcpt.Consumed)
	return v, rcpt, nil
}

// Names returns names of all records, admins only
func (r *Registry[V]) Names(ctx context.Context) ([]string, error) {
	if e := r.gate.Check(ctx, types.Admin); e != nil {
		return nil, e
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.records))
	for name := range r.records {
		names = append(names, name)
	}
	return names, nil
}
