package profile

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/supremind/accessgate/internal/persist/filter"
	"github.com/supremind/accessgate/types"
)

// persistedProfiles persists the profile polices with given persister, and makes sure it is synced
type persistedProfiles struct {
	persist types.ProfilePersister
	types.Profiles
	echoes *filter.Echoes[types.ProfileChange]
	log    logr.Logger
}

func newPersistedProfiles(ctx context.Context, inner types.Profiles, persist types.ProfilePersister, l logr.Logger) (*persistedProfiles, error) {
	p := &persistedProfiles{
		persist:  persist,
		Profiles: newSyncedProfiles(inner),
		echoes:   filter.NewEchoes[types.ProfileChange](),
		log:      l,
	}

	changes, e := persist.Watch(ctx)
	if e != nil {
		return nil, e
	}
	if e := p.loadPersisted(); e != nil {
		return nil, e
	}
	p.startWatching(ctx, changes)

	return p, nil
}

func (p *persistedProfiles) loadPersisted() error {
	p.log.V(4).Info("load persisted polices")
	polices, e := p.persist.List()
	if e != nil {
		return e
	}
	for _, policy := range polices {
		if e := p.Profiles.Grant(policy.Identity, policy.Capability); e != nil {
			return e
		}
	}

	return nil
}

func (p *persistedProfiles) startWatching(ctx context.Context, changes <-chan types.ProfileChange) {
	go func() {
		for {
			select {
			case change, ok := <-changes:
				if !ok {
					return
				}
				if p.echoes.Echo(echoOf(change)) {
					p.log.V(6).Info("skip own profile change", "change", change)
					continue
				}
				if e := p.coordinateChange(change); e != nil {
					p.log.Error(e, "coordinate profile changes")
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (p *persistedProfiles) coordinateChange(change types.ProfileChange) error {
	p.log.V(4).Info("coordinate profile changes", "change", change)

	switch change.Method {
	case types.PersistInsert, types.PersistUpdate:
		return p.Profiles.Grant(change.Identity, change.Capability)
	case types.PersistDelete:
		return p.Profiles.Revoke(change.Identity, change.Capability)
	}

	return fmt.Errorf("%w: profile persister changes: %s", types.ErrUnsupportedChange, change.Method)
}

// echoOf is how an incoming change is recognized as one written by ourselves
func echoOf(change types.ProfileChange) types.ProfileChange {
	if change.Method == types.PersistUpdate {
		change.Method = types.PersistInsert
	}
	return change
}

// write calls fn, and expects its change to come back from the persister if fn succeeds
func (p *persistedProfiles) write(id types.Identity, c types.Capability, method types.PersistMethod, fn func() error) error {
	change := types.ProfileChange{
		ProfilePolicy: types.ProfilePolicy{Identity: id, Capability: c},
		Method:        method,
	}

	p.echoes.Expect(change)
	if e := fn(); e != nil {
		p.echoes.Cancel(change)
		return e
	}
	return nil
}

// Grant a capability to the identity
func (p *persistedProfiles) Grant(id types.Identity, c types.Capability) error {
	p.log.V(4).Info("grant", "identity", id, "capability", c)

	if e := check(id, c); e != nil {
		return e
	}
	if p.Profiles.Can(id, c) {
		return nil
	}
	if e := p.write(id, c, types.PersistInsert, func() error { return p.persist.Insert(id, c) }); e != nil {
		return e
	}
	return p.Profiles.Grant(id, c)
}

// Revoke a capability from the identity
func (p *persistedProfiles) Revoke(id types.Identity, c types.Capability) error {
	p.log.V(4).Info("revoke", "identity", id, "capability", c)

	if e := check(id, c); e != nil {
		return e
	}
	if !p.Profiles.Can(id, c) {
		return nil
	}
	if e := p.write(id, c, types.PersistDelete, func() error { return p.persist.Remove(id, c) }); e != nil {
		return e
	}
	return p.Profiles.Revoke(id, c)
}
