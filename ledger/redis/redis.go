// Package redis provides a credit ledger shared through redis.
// Pools are integers, calls are hashes of caller and attached amount,
// every movement of credits is a WATCH/MULTI transaction.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-logr/logr"
	"github.com/redis/go-redis/v9"
	"github.com/supremind/accessgate/types"
)

var _ types.Ledger = (*Ledger)(nil)

// Option configures the Ledger
type Option func(*Ledger)

// WithLogger sets logger for the ledger
func WithLogger(l logr.Logger) Option {
	return func(lg *Ledger) {
		lg.log = l
	}
}

// WithPrefix sets the prefix of all keys used by the ledger
func WithPrefix(prefix string) Option {
	return func(lg *Ledger) {
		lg.prefix = prefix
	}
}

// WithRetries sets how many times a conflicting transaction is retried
func WithRetries(n int) Option {
	return func(lg *Ledger) {
		lg.retries = n
	}
}

// Ledger keeps pools, attachments and collected credits in redis
type Ledger struct {
	client  redis.UniversalClient
	prefix  string
	retries int
	log     logr.Logger
}

// New creates a Ledger backed by the redis client
func New(client redis.UniversalClient, opts ...Option) *Ledger {
	l := &Ledger{
		client:  client,
		prefix:  "accessgate",
		retries: 16,
		log:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) poolKey(id types.Identity) string {
	return l.prefix + ":ledger:pool:" + string(id)
}

func (l *Ledger) callKey(call types.Call) string {
	return l.prefix + ":ledger:call:" + call.ID.String()
}

func (l *Ledger) collectedKey() string {
	return l.prefix + ":ledger:collected"
}

// transact runs fn in an optimistic transaction watching keys, retrying on conflicts
func (l *Ledger) transact(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < l.retries; i++ {
		e := l.client.Watch(ctx, fn, keys...)
		if !errors.Is(e, redis.TxFailedErr) {
			return e
		}
		l.log.V(6).Info("transaction conflicted, retry", "keys", keys, "attempt", i+1)
	}
	return fmt.Errorf("%w: after %d attempts", redis.TxFailedErr, l.retries)
}

func getCredit(ctx context.Context, c redis.Cmdable, key string) (types.Credit, error) {
	v, e := c.Get(ctx, key).Uint64()
	if errors.Is(e, redis.Nil) {
		return 0, nil
	}
	return types.Credit(v), e
}

// checkAmount refuses amounts redis could not keep as integers
func checkAmount(amount types.Credit) error {
	if amount > types.MaxCredit {
		return fmt.Errorf("%w: %d", types.ErrCreditOverflow, amount)
	}
	return nil
}

// Deposit adds credits to the pool of id, redis refuses pools overflowing
func (l *Ledger) Deposit(ctx context.Context, id types.Identity, amount types.Credit) error {
	if e := checkAmount(amount); e != nil {
		return e
	}
	return l.client.IncrBy(ctx, l.poolKey(id), int64(amount)).Err()
}

// Attach creates a new call of caller, with amount moved from the caller's pool
func (l *Ledger) Attach(ctx context.Context, caller types.Identity, amount types.Credit) (types.Call, error) {
	call := types.NewCall(caller)
	return call, l.AttachTo(ctx, call, amount)
}

// AttachTo moves amount from the pool of the caller to the call
func (l *Ledger) AttachTo(ctx context.Context, call types.Call, amount types.Credit) error {
	if e := checkAmount(amount); e != nil {
		return e
	}
	pool, key := l.poolKey(call.Caller), l.callKey(call)

	e := l.transact(ctx, func(tx *redis.Tx) error {
		balance, e := getCredit(ctx, tx, pool)
		if e != nil {
			return e
		}
		if balance < amount {
			return fmt.Errorf("%w: %s has %d, attaching %d", types.ErrInsufficientFunds, call.Caller, balance, amount)
		}

		_, e = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.DecrBy(ctx, pool, int64(amount))
			pipe.HSet(ctx, key, "caller", string(call.Caller))
			pipe.HIncrBy(ctx, key, "amount", int64(amount))
			return nil
		})
		return e
	}, pool, key)
	if e != nil {
		return e
	}

	l.log.V(4).Info("attach", "call", call, "amount", amount)
	return nil
}

// Attached implements types.Ledger
func (l *Ledger) Attached(ctx context.Context, call types.Call) (types.Credit, error) {
	v, e := l.client.HGet(ctx, l.callKey(call), "amount").Uint64()
	if errors.Is(e, redis.Nil) {
		return 0, nil
	}
	return types.Credit(v), e
}

// Consume implements types.Ledger
func (l *Ledger) Consume(ctx context.Context, call types.Call, amount types.Credit) error {
	e := l.take(ctx, call, amount, func(pipe redis.Pipeliner, _ types.Identity) {
		pipe.IncrBy(ctx, l.collectedKey(), int64(amount))
	})
	if e != nil {
		return e
	}

	l.log.V(4).Info("consume", "call", call, "amount", amount)
	return nil
}

// Refund implements types.Ledger
func (l *Ledger) Refund(ctx context.Context, call types.Call, amount types.Credit) error {
	e := l.take(ctx, call, amount, func(pipe redis.Pipeliner, caller types.Identity) {
		pipe.IncrBy(ctx, l.poolKey(caller), int64(amount))
	})
	if e != nil {
		return e
	}

	l.log.V(4).Info("refund", "call", call, "amount", amount)
	return nil
}

// take removes amount from the call's attachment and moves it wherever to says, in one transaction
func (l *Ledger) take(ctx context.Context, call types.Call, amount types.Credit, to func(redis.Pipeliner, types.Identity)) error {
	if e := checkAmount(amount); e != nil {
		return e
	}
	key := l.callKey(call)

	return l.transact(ctx, func(tx *redis.Tx) error {
		fields, e := tx.HGetAll(ctx, key).Result()
		if e != nil {
			return e
		}
		if len(fields) == 0 {
			return fmt.Errorf("%w: %s", types.ErrUnknownCall, call)
		}
		attached, e := strconv.ParseUint(fields["amount"], 10, 64)
		if e != nil {
			return fmt.Errorf("corrupted attachment of %s: %w", call, e)
		}
		if types.Credit(attached) < amount {
			return fmt.Errorf("%w: %s has %d attached, taking %d", types.ErrOverdraw, call, attached, amount)
		}

		_, e = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if types.Credit(attached) == amount {
				pipe.Del(ctx, key)
			} else {
				pipe.HIncrBy(ctx, key, "amount", -int64(amount))
			}
			to(pipe, types.Identity(fields["caller"]))
			return nil
		})
		return e
	}, key)
}

// Balance returns credits in the pool of id
func (l *Ledger) Balance(ctx context.Context, id types.Identity) (types.Credit, error) {
	return getCredit(ctx, l.client, l.poolKey(id))
}

// Collected returns all consumed credits
func (l *Ledger) Collected(ctx context.Context) (types.Credit, error) {
	return getCredit(ctx, l.client, l.collectedKey())
}
