package types

import (
	"errors"
	"fmt"
)

// Reason is why an access is refused, the set of reasons is closed
type Reason uint8

// reasons of refused accesses
const (
	// Restricted means the caller lacks the required privilege and offered no payment
	Restricted Reason = iota + 1
	// NotFound means a referenced target does not exist
	NotFound
	// InsufficientPayment means the caller is not privileged and offered less than the price
	InsufficientPayment
)

var reasonNames = map[Reason]string{
	Restricted:          "restricted",
	NotFound:            "not found",
	InsufficientPayment: "insufficient payment",
}

func (r Reason) String() string {
	if n, ok := reasonNames[r]; ok {
		return n
	}
	return fmt.Sprintf("reason(%d)", uint8(r))
}

// AccessError reports a refused access with one of the closed reasons
type AccessError struct {
	Reason   Reason
	Identity Identity
	Detail   string
}

// NewAccessError creates an AccessError
func NewAccessError(r Reason, id Identity, detail string) *AccessError {
	return &AccessError{Reason: r, Identity: id, Detail: detail}
}

func (e *AccessError) Error() string {
	msg := e.Reason.String()
	if e.Identity.Valid() {
		msg += " for " + e.Identity.String()
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is matches any AccessError with the same reason, so that errors.Is(err, ErrRestricted) works
func (e *AccessError) Is(target error) bool {
	t, ok := target.(*AccessError)
	if !ok {
		return false
	}
	return t.Reason == e.Reason
}

// ReasonOf extracts the reason of an AccessError in err's chain
func ReasonOf(err error) (Reason, bool) {
	var ae *AccessError
	if errors.As(err, &ae) {
		return ae.Reason, true
	}
	return 0, false
}

// sentinels to be matched with errors.Is
var (
	ErrRestricted          error = &AccessError{Reason: Restricted}
	ErrNotFound            error = &AccessError{Reason: NotFound}
	ErrInsufficientPayment error = &AccessError{Reason: InsufficientPayment}
)

// operational errors, they are never reasons of a refused access
var (
	ErrNoOwner           = errors.New("gate must be created with an owner")
	ErrInvalidIdentity   = errors.New("invalid identity, it should not be empty")
	ErrInvalidCapability = errors.New("invalid capability, it should not be empty")
	ErrUnknownLevel      = errors.New("unknown level, it should be one of public, admin, and owner")
	ErrNoCaller          = errors.New("no caller identity in context")
	ErrNoCall            = errors.New("no call in context")
	ErrCallInFlight      = errors.New("call is being settled")
	ErrUnknownCall       = errors.New("unknown call")
	ErrOverdraw          = errors.New("amount exceeds attached credits")
	ErrInsufficientFunds = errors.New("insufficient credits in pool")
	ErrCreditOverflow    = errors.New("credits exceed the maximum amount")
	ErrUnsupportedChange = errors.New("persister changes in a way unsupported")
)
