package types

import "context"

// Authorizer is the top level interface for end use.
// Requesters of mutations are checked against owner and admins before anything changes.
type Authorizer interface {
	RoleManager
	ProfileManager

	// Authorize decides if the identity satisfies the required level
	Authorize(Identity, Level) Decision

	// AuthorizeOrPay authorizes the caller of the call, or charges price from the credits attached to it.
	// The receipt is valid even if an error is returned.
	AuthorizeOrPay(ctx context.Context, call Call, l Level, price Credit) (Receipt, error)

	// Release refunds everything attached to the call without authorizing anything
	Release(context.Context, Call) (Receipt, error)
}

// RoleManager manages owner and admins on behalf of a requester
type RoleManager interface {
	RolesReader

	// AddAdmins appends identities to the admin set, requester must be an admin
	AddAdmins(requester Identity, ids ...Identity) error

	// RemoveAdmins removes identities from the admin set, requester must be an admin
	RemoveAdmins(requester Identity, ids ...Identity) error

	// TransferOwner hands the ownership over, requester must be the owner
	TransferOwner(requester, newOwner Identity) error
}

// ProfileManager manages capabilities on behalf of a requester
type ProfileManager interface {
	// Grant a capability to target, requester must be an admin
	Grant(requester, target Identity, c Capability) error

	// Revoke a capability from target, requester must be an admin
	Revoke(requester, target Identity, c Capability) error

	// Can tells if the identity holds the capability
	Can(Identity, Capability) bool

	// CapabilitiesOf returns all capabilities held by the identity
	CapabilitiesOf(Identity) map[Capability]struct{}

	// HoldersOf returns all identities holding the capability
	HoldersOf(Capability) map[Identity]struct{}
}

// PresetPolicy grants an identity the level before the owner and admin rules are consulted.
// Preset polices are never consulted for the Owner level.
type PresetPolicy func(authz Authorizer, id Identity, l Level) bool
