package types

// Decision is the result of an authorization check, either granted or denied with a reason.
// The zero Decision is denied.
type Decision struct {
	granted bool
	reason  Reason
}

// Granted creates a granted Decision
func Granted() Decision {
	return Decision{granted: true}
}

// Denied creates a denied Decision
func Denied(r Reason) Decision {
	return Decision{reason: r}
}

// Granted tells if the access is allowed
func (d Decision) Granted() bool {
	return d.granted
}

// Reason of a denied decision, zero for granted ones
func (d Decision) Reason() Reason {
	if d.granted {
		return 0
	}
	if d.reason == 0 {
		return Restricted
	}
	return d.reason
}

// Err converts a denied decision to an AccessError about id, nil if granted
func (d Decision) Err(id Identity, l Level) error {
	if d.granted {
		return nil
	}
	return NewAccessError(d.Reason(), id, "requires "+l.String())
}

func (d Decision) String() string {
	if d.granted {
		return "granted"
	}
	return "denied(" + d.Reason().String() + ")"
}
