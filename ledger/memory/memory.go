// Package memory provides an in-process credit ledger.
// Every identity has a pool of credits; attaching credits to a call moves them out of the pool,
// consuming moves them to the collected revenue, refunding moves them back to the pool.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/supremind/accessgate/types"
)

var _ types.Ledger = (*Ledger)(nil)

type attachment struct {
	caller types.Identity
	amount types.Credit
}

// Ledger keeps pools, attachments and collected credits in memory
type Ledger struct {
	sync.Mutex
	pools     map[types.Identity]types.Credit
	attached  map[uuid.UUID]attachment
	collected types.Credit
	deposited types.Credit
	log       logr.Logger
}

// New creates an empty Ledger
func New(l logr.Logger) *Ledger {
	return &Ledger{
		pools:    make(map[types.Identity]types.Credit),
		attached: make(map[uuid.UUID]attachment),
		log:      l,
	}
}

// Deposit adds credits to the pool of id.
// All deposits sum up to at most types.MaxCredit, so that no pool could overflow.
func (l *Ledger) Deposit(id types.Identity, amount types.Credit) error {
	l.Lock()
	defer l.Unlock()

	deposited, e := l.deposited.Add(amount)
	if e != nil {
		return fmt.Errorf("deposit to %s: %w", id, e)
	}
	l.deposited = deposited
	l.pools[id] += amount
	return nil
}

// Attach creates a new call of caller, with amount moved from the caller's pool
func (l *Ledger) Attach(caller types.Identity, amount types.Credit) (types.Call, error) {
	call := types.NewCall(caller)
	return call, l.AttachTo(call, amount)
}

// AttachTo moves amount from the pool of the caller to the call
func (l *Ledger) AttachTo(call types.Call, amount types.Credit) error {
	l.Lock()
	defer l.Unlock()

	if l.pools[call.Caller] < amount {
		return fmt.Errorf("%w: %s has %d, attaching %d", types.ErrInsufficientFunds, call.Caller, l.pools[call.Caller], amount)
	}
	l.pools[call.Caller] -= amount

	att := l.attached[call.ID]
	att.caller = call.Caller
	att.amount += amount
	l.attached[call.ID] = att

	l.log.V(4).Info("attach", "call", call, "amount", amount)
	return nil
}

// Attached implements types.Ledger
func (l *Ledger) Attached(_ context.Context, call types.Call) (types.Credit, error) {
	l.Lock()
	defer l.Unlock()

	return l.attached[call.ID].amount, nil
}

// Consume implements types.Ledger
func (l *Ledger) Consume(_ context.Context, call types.Call, amount types.Credit) error {
	l.Lock()
	defer l.Unlock()

	if e := l.take(call, amount); e != nil {
		return e
	}
	l.collected += amount

	l.log.V(4).Info("consume", "call", call, "amount", amount)
	return nil
}

// Refund implements types.Ledger
func (l *Ledger) Refund(_ context.Context, call types.Call, amount types.Credit) error {
	l.Lock()
	defer l.Unlock()

	att := l.attached[call.ID]
	if e := l.take(call, amount); e != nil {
		return e
	}
	l.pools[att.caller] += amount

	l.log.V(4).Info("refund", "call", call, "caller", att.caller, "amount", amount)
	return nil
}

// take removes amount from the call's attachment, the caller must hold the lock
func (l *Ledger) take(call types.Call, amount types.Credit) error {
	att, ok := l.attached[call.ID]
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrUnknownCall, call)
	}
	if att.amount < amount {
		return fmt.Errorf("%w: %s has %d attached, taking %d", types.ErrOverdraw, call, att.amount, amount)
	}

	att.amount -= amount
	if att.amount == 0 {
		delete(l.attached, call.ID)
	} else {
		l.attached[call.ID] = att
	}
	return nil
}

// Balance returns credits in the pool of id
func (l *Ledger) Balance(id types.Identity) types.Credit {
	l.Lock()
	defer l.Unlock()

	return l.pools[id]
}

// Collected returns all consumed credits
func (l *Ledger) Collected() types.Credit {
	l.Lock()
	defer l.Unlock()

	return l.collected
}

// Total returns credits in pools, attached to calls, and collected: it never changes but by deposits
func (l *Ledger) Total() types.Credit {
	l.Lock()
	defer l.Unlock()

	total := l.collected
	for _, c := range l.pools {
		total += c
	}
	for _, att := range l.attached {
		total += att.amount
	}
	return total
}
