package authorizer

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/supremind/accessgate/types"
)

// meteredAuthorizer lets unprivileged callers pay for access with the credits attached to their calls
type meteredAuthorizer struct {
	types.Authorizer
	ledger types.Ledger
	l      logr.Logger

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func newMeteredAuthorizer(authz types.Authorizer, ledger types.Ledger, l logr.Logger) *meteredAuthorizer {
	return &meteredAuthorizer{
		Authorizer: authz,
		ledger:     ledger,
		l:          l,
		inFlight:   make(map[uuid.UUID]struct{}),
	}
}

// enter marks the call as being settled, false if it is already
func (m *meteredAuthorizer) enter(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.inFlight[id]; ok {
		return false
	}
	m.inFlight[id] = struct{}{}
	return true
}

func (m *meteredAuthorizer) leave(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inFlight, id)
}

// AuthorizeOrPay authorizes the caller, or charges exactly price from the attached credits.
// Whatever is not consumed is refunded.
func (m *meteredAuthorizer) AuthorizeOrPay(ctx context.Context, call types.Call, l types.Level, price types.Credit) (types.Receipt, error) {
	rcpt := types.Receipt{Call: call}
	if !m.enter(call.ID) {
		return rcpt, fmt.Errorf("%w: %s", types.ErrCallInFlight, call)
	}
	defer m.leave(call.ID)

	offered, e := m.ledger.Attached(ctx, call)
	if e != nil {
		return rcpt, fmt.Errorf("read attached credits of %s: %w", call, e)
	}
	rcpt.Offered = offered

	if m.Authorizer.Authorize(call.Caller, l).Granted() {
		m.l.V(6).Info("granted without payment", "call", call, "level", l, "offered", offered)
		return rcpt, m.refund(ctx, &rcpt, offered)
	}

	if offered < price {
		m.l.V(4).Info("payment short of price", "call", call, "level", l, "offered", offered, "price", price)
		if e := m.refund(ctx, &rcpt, offered); e != nil {
			return rcpt, e
		}
		if offered == 0 {
			return rcpt, types.NewAccessError(types.Restricted, call.Caller, "requires "+l.String())
		}
		return rcpt, types.NewAccessError(types.InsufficientPayment, call.Caller, fmt.Sprintf("offered %d, price %d", offered, price))
	}

	if price > 0 {
		if e := m.ledger.Consume(ctx, call, price); e != nil {
			if re := m.refund(ctx, &rcpt, offered); re != nil {
				m.l.Error(re, "refund after failed consumption", "call", call)
			}
			return rcpt, fmt.Errorf("consume %d of %s: %w", price, call, e)
		}
		rcpt.Consumed = price
	}
	rcpt.Paid = true
	m.l.V(4).Info("paid for access", "call", call, "level", l, "price", price, "change", offered-price)

	return rcpt, m.refund(ctx, &rcpt, offered-price)
}

// Release refunds everything attached to the call
func (m *meteredAuthorizer) Release(ctx context.Context, call types.Call) (types.Receipt, error) {
	rcpt := types.Receipt{Call: call}
	if !m.enter(call.ID) {
		return rcpt, fmt.Errorf("%w: %s", types.ErrCallInFlight, call)
	}
	defer m.leave(call.ID)

	offered, e := m.ledger.Attached(ctx, call)
	if e != nil {
		return rcpt, fmt.Errorf("read attached credits of %s: %w", call, e)
	}
	rcpt.Offered = offered

	m.l.V(4).Info("release call", "call", call, "offered", offered)
	return rcpt, m.refund(ctx, &rcpt, offered)
}

func (m *meteredAuthorizer) refund(ctx context.Context, rcpt *types.Receipt, amount types.Credit) error {
	if amount == 0 {
		return nil
	}
	if e := m.ledger.Refund(ctx, rcpt.Call, amount); e != nil {
		return fmt.Errorf("refund %d to %s: %w", amount, rcpt.Call, e)
	}
	rcpt.Refunded += amount
	return nil
}
