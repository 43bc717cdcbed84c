package authorizer

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/supremind/accessgate/types"
)

var _ types.Authorizer = (*authorizer)(nil)

// authorizer checks requesters against owner and admins, it knows nothing about credits
type authorizer struct {
	roles    types.Roles
	profiles types.Profiles
	l        logr.Logger
}

// New creates a concurrent safe authorizer, credits are accepted only if ledger is not nil
func New(roles types.Roles, profiles types.Profiles, ledger types.Ledger, l logr.Logger, presets ...types.PresetPolicy) types.Authorizer {
	var a types.Authorizer
	a = &authorizer{
		roles:    roles,
		profiles: profiles,
		l:        l,
	}

	if len(presets) > 0 {
		a = newWithPresetPolices(a, presets...)
	}
	if ledger != nil {
		a = newMeteredAuthorizer(a, ledger, l.WithName("meter"))
	}
	a = newSyncedAuthorizer(a)

	return a
}

// Owner returns the current owner
func (a *authorizer) Owner() types.Identity {
	return a.roles.Owner()
}

// Admins returns the admin set in order
func (a *authorizer) Admins() []types.Identity {
	return a.roles.Admins()
}

// IsOwner tells if the identity is exactly the owner
func (a *authorizer) IsOwner(id types.Identity) bool {
	return a.roles.IsOwner(id)
}

// IsAdmin tells if the identity is in the admin set
func (a *authorizer) IsAdmin(id types.Identity) bool {
	return a.roles.IsAdmin(id)
}

// require checks the requester with the built-in rules only, preset polices never authorize mutations
func (a *authorizer) require(requester types.Identity, l types.Level) error {
	return a.Authorize(requester, l).Err(requester, l)
}

// AddAdmins appends identities to the admin set
func (a *authorizer) AddAdmins(requester types.Identity, ids ...types.Identity) error {
	a.l.V(4).Info("add admins", "requester", requester, "admins", ids)

	if e := a.require(requester, types.Admin); e != nil {
		return e
	}
	return a.roles.Enroll(ids...)
}

// RemoveAdmins removes identities from the admin set
func (a *authorizer) RemoveAdmins(requester types.Identity, ids ...types.Identity) error {
	a.l.V(4).Info("remove admins", "requester", requester, "admins", ids)

	if e := a.require(requester, types.Admin); e != nil {
		return e
	}
	return a.roles.Dismiss(ids...)
}

// TransferOwner hands the ownership over
func (a *authorizer) TransferOwner(requester, newOwner types.Identity) error {
	a.l.V(4).Info("transfer owner", "requester", requester, "owner", newOwner)

	if e := a.require(requester, types.Owner); e != nil {
		return e
	}
	return a.roles.SetOwner(newOwner)
}

// Grant a capability to target
func (a *authorizer) Grant(requester, target types.Identity, c types.Capability) error {
	a.l.V(4).Info("grant", "requester", requester, "target", target, "capability", c)

	if e := a.require(requester, types.Admin); e != nil {
		return e
	}
	return a.profiles.Grant(target, c)
}

// Revoke a capability from target
func (a *authorizer) Revoke(requester, target types.Identity, c types.Capability) error {
	a.l.V(4).Info("revoke", "requester", requester, "target", target, "capability", c)

	if e := a.require(requester, types.Admin); e != nil {
		return e
	}
	return a.profiles.Revoke(target, c)
}

// Can tells if the identity holds the capability
func (a *authorizer) Can(id types.Identity, c types.Capability) bool {
	return a.profiles.Can(id, c)
}

// CapabilitiesOf returns all capabilities held by the identity
func (a *authorizer) CapabilitiesOf(id types.Identity) map[types.Capability]struct{} {
	return a.profiles.CapabilitiesOf(id)
}

// HoldersOf returns all identities holding the capability
func (a *authorizer) HoldersOf(c types.Capability) map[types.Identity]struct{} {
	return a.profiles.HoldersOf(c)
}

// Authorize decides if the identity satisfies the level, the owner satisfies admin level too
func (a *authorizer) Authorize(id types.Identity, l types.Level) types.Decision {
	a.l.V(6).Info("authorize", "identity", id, "level", l)

	switch l {
	case types.Public:
		return types.Granted()
	case types.Admin:
		if a.roles.IsOwner(id) || a.roles.IsAdmin(id) {
			return types.Granted()
		}
	case types.Owner:
		if a.roles.IsOwner(id) {
			return types.Granted()
		}
	}

	return types.Denied(types.Restricted)
}

// AuthorizeOrPay without a ledger accepts no payment: it is a plain authorization
func (a *authorizer) AuthorizeOrPay(_ context.Context, call types.Call, l types.Level, _ types.Credit) (types.Receipt, error) {
	return types.Receipt{Call: call}, a.Authorize(call.Caller, l).Err(call.Caller, l)
}

// Release has nothing to refund without a ledger
func (a *authorizer) Release(_ context.Context, call types.Call) (types.Receipt, error) {
	return types.Receipt{Call: call}, nil
}
