package roles

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/supremind/accessgate/internal/persist/filter"
	"github.com/supremind/accessgate/types"
)

// persistedRoles persists the roles with given persister, and keeps in sync with changes made by others
type persistedRoles struct {
	persist types.RolePersister
	types.Roles
	echoes *filter.Echoes[types.RoleChange]
	log    logr.Logger
}

func newPersistedRoles(ctx context.Context, owner types.Identity, persist types.RolePersister, l logr.Logger) (*persistedRoles, error) {
	r := &persistedRoles{
		persist: persist,
		Roles:   newSyncedRoles(newThinRoles(owner)),
		echoes:  filter.NewEchoes[types.RoleChange](),
		log:     l,
	}

	changes, e := persist.Watch(ctx)
	if e != nil {
		return nil, e
	}
	if e := r.loadPersisted(owner); e != nil {
		return nil, e
	}
	r.startWatching(ctx, changes)

	return r, nil
}

// loadPersisted adopts the persisted roles, or seeds the persister if it is empty
func (r *persistedRoles) loadPersisted(owner types.Identity) error {
	r.log.V(4).Info("load persisted roles")

	snap, e := r.persist.List()
	if e != nil {
		return e
	}

	if !snap.Owner.Valid() {
		r.log.V(4).Info("seed empty persister", "owner", owner)
		if e := r.write(ownerChange(owner), func() error { return r.persist.SetOwner(owner) }); e != nil {
			return e
		}
		return r.write(adminChange(owner, types.PersistInsert), func() error { return r.persist.InsertAdmin(owner) })
	}

	if snap.Owner != owner {
		r.log.Info("adopt persisted owner", "persisted", snap.Owner, "given", owner)
	}
	if e := r.Roles.SetOwner(snap.Owner); e != nil {
		return e
	}

	keep := make(map[types.Identity]struct{}, len(snap.Admins))
	for _, id := range snap.Admins {
		keep[id] = struct{}{}
	}
	var stale []types.Identity
	for _, id := range r.Roles.Admins() {
		if _, ok := keep[id]; !ok {
			stale = append(stale, id)
		}
	}
	if e := r.Roles.Dismiss(stale...); e != nil {
		return e
	}
	return r.Roles.Enroll(snap.Admins...)
}

func ownerChange(id types.Identity) types.RoleChange {
	return types.RoleChange{Identity: id, Role: types.OwnerRole, Method: types.PersistUpdate}
}

func adminChange(id types.Identity, method types.PersistMethod) types.RoleChange {
	return types.RoleChange{Identity: id, Role: types.AdminRole, Method: method}
}

// echoOf is how an incoming change is recognized as one written by ourselves,
// persisters tell the first owner from the following ones but writers do not
func echoOf(change types.RoleChange) types.RoleChange {
	if change.Role == types.OwnerRole {
		change.Method = types.PersistUpdate
	}
	return change
}

// write calls fn, and expects change to come back from the persister if fn succeeds
func (r *persistedRoles) write(change types.RoleChange, fn func() error) error {
	r.echoes.Expect(change)
	if e := fn(); e != nil {
		r.echoes.Cancel(change)
		return e
	}
	return nil
}

func (r *persistedRoles) startWatching(ctx context.Context, changes <-chan types.RoleChange) {
	go func() {
		for {
			select {
			case change, ok := <-changes:
				if !ok {
					return
				}
				if r.echoes.Echo(echoOf(change)) {
					r.log.V(6).Info("skip own role change", "change", change)
					continue
				}
				if e := r.coordinateChange(change); e != nil {
					r.log.Error(e, "coordinate role changes")
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (r *persistedRoles) coordinateChange(change types.RoleChange) error {
	r.log.V(4).Info("coordinate role changes", "change", change)

	switch change.Role {
	case types.OwnerRole:
		switch change.Method {
		case types.PersistInsert, types.PersistUpdate:
			return r.Roles.SetOwner(change.Identity)
		}
	case types.AdminRole:
		switch change.Method {
		case types.PersistInsert:
			return r.Roles.Enroll(change.Identity)
		case types.PersistDelete:
			return r.Roles.Dismiss(change.Identity)
		}
	}

	return fmt.Errorf("%w: role persister changes: %s %s", types.ErrUnsupportedChange, change.Method, change.Role)
}

// SetOwner replaces the owner
func (r *persistedRoles) SetOwner(id types.Identity) error {
	r.log.V(4).Info("set owner", "owner", id)

	if !id.Valid() {
		return fmt.Errorf("%w: owner", types.ErrInvalidIdentity)
	}
	if r.Roles.IsOwner(id) {
		return nil
	}
	if e := r.write(ownerChange(id), func() error { return r.persist.SetOwner(id) }); e != nil {
		return e
	}
	return r.Roles.SetOwner(id)
}

// Enroll appends new admins one by one, those persisted before a failure stay enrolled
func (r *persistedRoles) Enroll(ids ...types.Identity) error {
	r.log.V(4).Info("enroll admins", "admins", ids)

	if e := validate(ids); e != nil {
		return e
	}
	for _, id := range ids {
		if r.Roles.IsAdmin(id) {
			continue
		}
		if e := r.write(adminChange(id, types.PersistInsert), func() error { return r.persist.InsertAdmin(id) }); e != nil {
			return fmt.Errorf("persist admin %s: %w", id, e)
		}
		if e := r.Roles.Enroll(id); e != nil {
			return e
		}
	}
	return nil
}

// Dismiss removes admins one by one, those persisted before a failure stay dismissed
func (r *persistedRoles) Dismiss(ids ...types.Identity) error {
	r.log.V(4).Info("dismiss admins", "admins", ids)

	if e := validate(ids); e != nil {
		return e
	}
	for _, id := range ids {
		if !r.Roles.IsAdmin(id) {
			continue
		}
		if e := r.write(adminChange(id, types.PersistDelete), func() error { return r.persist.RemoveAdmin(id) }); e != nil {
			return fmt.Errorf("remove persisted admin %s: %w", id, e)
		}
		if e := r.Roles.Dismiss(id); e != nil {
			return e
		}
	}
	return nil
}
