package types

import "context"

// Ledger holds the credits attached to calls.
// The gate never manages its storage, it only reads and instructs it.
type Ledger interface {
	// Attached reports the credits still attached to the call, zero for unknown calls
	Attached(context.Context, Call) (Credit, error)

	// Consume takes amount of the attached credits, it fails if more than attached
	Consume(context.Context, Call, Credit) error

	// Refund returns amount of the attached credits to the caller's pool
	Refund(context.Context, Call, Credit) error
}
