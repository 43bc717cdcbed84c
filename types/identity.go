package types

// Identity is a caller principal assigned by the platform.
// Nothing but equality is interpreted about it.
type Identity string

func (id Identity) String() string {
	return string(id)
}

// Valid tells if id could be used as a requester or a target
func (id Identity) Valid() bool {
	return id != ""
}

// Capability is a named permission held by identities, its meaning is up to callers
type Capability string

func (c Capability) String() string {
	return string(c)
}

// Valid tells if c could be granted
func (c Capability) Valid() bool {
	return c != ""
}
