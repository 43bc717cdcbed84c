package types

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Credit is an amount of the fungible metering unit
type Credit uint64

// MaxCredit is the largest amount a ledger accepts, ledgers keep amounts as signed 64 bits integers
const MaxCredit Credit = math.MaxInt64

// Add sums two amounts, ErrCreditOverflow if the sum exceeds MaxCredit
func (c Credit) Add(o Credit) (Credit, error) {
	if c > MaxCredit || o > MaxCredit-c {
		return 0, fmt.Errorf("%w: %d + %d", ErrCreditOverflow, c, o)
	}
	return c + o, nil
}

// Call identifies a single call attempt, credits are attached to calls
type Call struct {
	ID     uuid.UUID
	Caller Identity
}

// NewCall creates a Call with a random id
func NewCall(caller Identity) Call {
	return Call{ID: uuid.New(), Caller: caller}
}

func (c Call) String() string {
	return fmt.Sprintf("%s@%s", c.Caller, c.ID)
}

// Receipt tells what happened to the credits attached to a call
type Receipt struct {
	Call     Call
	Offered  Credit
	Consumed Credit
	Refunded Credit
	// Paid is true when access was obtained through payment instead of privilege
	Paid bool
}

// Balanced tells if every offered credit is either consumed or refunded
func (r Receipt) Balanced() bool {
	return r.Consumed+r.Refunded == r.Offered
}
