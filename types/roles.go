package types

// Roles keeps the owner and the ordered admin set, without checking who is asking
type Roles interface {
	RolesReader
	RolesWriter
}

// RolesReader defines queries about owner and admins
type RolesReader interface {
	// Owner returns the current owner
	Owner() Identity

	// Admins returns a copy of the admin set, in the order they joined
	Admins() []Identity

	// IsOwner tells if the identity is exactly the owner
	IsOwner(Identity) bool

	// IsAdmin tells if the identity is in the admin set
	IsAdmin(Identity) bool
}

// RolesWriter defines unchecked mutations of owner and admins
type RolesWriter interface {
	// SetOwner replaces the owner, the admin set is untouched
	SetOwner(Identity) error

	// Enroll appends identities not yet in the admin set, in the given order
	Enroll(...Identity) error

	// Dismiss removes identities from the admin set, non-members are ignored
	Dismiss(...Identity) error
}
