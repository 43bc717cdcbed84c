package authorizer

import (
	"context"
	"sync"

	"github.com/supremind/accessgate/types"
)

var _ types.Authorizer = (*syncedAuthorizer)(nil)

// syncedAuthorizer makes the given authorizer be safe in concurrent usages:
// no decision observes owner, admins and profiles in the middle of a mutation
type syncedAuthorizer struct {
	sync.RWMutex
	authz types.Authorizer
}

func newSyncedAuthorizer(authz types.Authorizer) *syncedAuthorizer {
	return &syncedAuthorizer{authz: authz}
}

// Owner returns the current owner
func (authz *syncedAuthorizer) Owner() types.Identity {
	authz.RLock()
	defer authz.RUnlock()

	return authz.authz.Owner()
}

// Admins returns the admin set in order
func (authz *syncedAuthorizer) Admins() []types.Identity {
	authz.RLock()
	defer authz.RUnlock()

	return authz.authz.Admins()
}

// IsOwner tells if the identity is exactly the owner
func (authz *syncedAuthorizer) IsOwner(id types.Identity) bool {
	authz.RLock()
	defer authz.RUnlock()

	return authz.authz.IsOwner(id)
}

// IsAdmin tells if the identity is in the admin set
func (authz *syncedAuthorizer) IsAdmin(id types.Identity) bool {
	authz.RLock()
	defer authz.RUnlock()

	return authz.authz.IsAdmin(id)
}

// AddAdmins appends identities to the admin set
func (authz *syncedAuthorizer) AddAdmins(requester types.Identity, ids ...types.Identity) error {
	authz.Lock()
	defer authz.Unlock()

	return authz.authz.AddAdmins(requester, ids...)
}

// RemoveAdmins removes identities from the admin set
func (authz *syncedAuthorizer) RemoveAdmins(requester types.Identity, ids ...types.Identity) error {
	authz.Lock()
	defer authz.Unlock()

	return authz.authz.RemoveAdmins(requester, ids...)
}

// TransferOwner hands the ownership over
func (authz *syncedAuthorizer) TransferOwner(requester, newOwner types.Identity) error {
	authz.Lock()
	defer authz.Unlock()

	return authz.authz.TransferOwner(requester, newOwner)
}

// Grant a capability to target
func (authz *syncedAuthorizer) Grant(requester, target types.Identity, c types.Capability) error {
	authz.Lock()
	defer authz.Unlock()

	return authz.authz.Grant(requester, target, c)
}

// Revoke a capability from target
func (authz *syncedAuthorizer) Revoke(requester, target types.Identity, c types.Capability) error {
	authz.Lock()
	defer authz.Unlock()

	return authz.authz.Revoke(requester, target, c)
}

// Can tells if the identity holds the capability
func (authz *syncedAuthorizer) Can(id types.Identity, c types.Capability) bool {
	authz.RLock()
	defer authz.RUnlock()

	return authz.authz.Can(id, c)
}

// CapabilitiesOf returns all capabilities held by the identity
func (authz *syncedAuthorizer) CapabilitiesOf(id types.Identity) map[types.Capability]struct{} {
	authz.RLock()
	defer authz.RUnlock()

	return authz.authz.CapabilitiesOf(id)
}

// HoldersOf returns all identities holding the capability
func (authz *syncedAuthorizer) HoldersOf(c types.Capability) map[types.Identity]struct{} {
	authz.RLock()
	defer authz.RUnlock()

	return authz.authz.HoldersOf(c)
}

// Authorize decides if the identity satisfies the level
func (authz *syncedAuthorizer) Authorize(id types.Identity, l types.Level) types.Decision {
	authz.RLock()
	defer authz.RUnlock()

	return authz.authz.Authorize(id, l)
}

// AuthorizeOrPay holds the decision while the credits are settled
func (authz *syncedAuthorizer) AuthorizeOrPay(ctx context.Context, call types.Call, l types.Level, price types.Credit) (types.Receipt, error) {
	authz.RLock()
	defer authz.RUnlock()

	return authz.authz.AuthorizeOrPay(ctx, call, l, price)
}

// Release refunds everything attached to the call
func (authz *syncedAuthorizer) Release(ctx context.Context, call types.Call) (types.Receipt, error) {
	authz.RLock()
	defer authz.RUnlock()

	return authz.authz.Release(ctx, call)
}
