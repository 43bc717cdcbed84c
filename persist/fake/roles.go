package fake

import (
	"context"
	"sync"

	"github.com/supremind/accessgate/types"
)

var _ types.RolePersister = (*rolePersister)(nil)

type rolePersister struct {
	sync.Mutex
	owner  types.Identity
	admins []types.Identity
	hub    *hub[types.RoleChange]
}

// NewRolePersister returns a fake role persister which should not be used in real works
func NewRolePersister() *rolePersister {
	return &rolePersister{hub: newHub[types.RoleChange]()}
}

func (p *rolePersister) SetOwner(id types.Identity) error {
	p.Lock()
	if p.owner == id {
		p.Unlock()
		return nil
	}
	method := types.PersistUpdate
	if p.owner == "" {
		method = types.PersistInsert
	}
	p.owner = id
	p.Unlock()

	p.hub.publish(types.RoleChange{Identity: id, Role: types.OwnerRole, Method: method})
	return nil
}

func (p *rolePersister) InsertAdmin(id types.Identity) error {
	p.Lock()
	for _, a := range p.admins {
		if a == id {
			p.Unlock()
			return nil
		}
	}
	p.admins = append(p.admins, id)
	p.Unlock()

	p.hub.publish(types.RoleChange{Identity: id, Role: types.AdminRole, Method: types.PersistInsert})
	return nil
}

func (p *rolePersister) RemoveAdmin(id types.Identity) error {
	p.Lock()
	idx := -1
	for i, a := range p.admins {
		if a == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		p.Unlock()
		return nil
	}
	p.admins = append(p.admins[:idx:idx], p.admins[idx+1:]...)
	p.Unlock()

	p.hub.publish(types.RoleChange{Identity: id, Role: types.AdminRole, Method: types.PersistDelete})
	return nil
}

func (p *rolePersister) List() (types.RoleSnapshot, error) {
	p.Lock()
	defer p.Unlock()

	admins := make([]types.Identity, len(p.admins))
	copy(admins, p.admins)
	return types.RoleSnapshot{Owner: p.owner, Admins: admins}, nil
}

func (p *rolePersister) Watch(ctx context.Context) (<-chan types.RoleChange, error) {
	return p.hub.watch(ctx), nil
}
