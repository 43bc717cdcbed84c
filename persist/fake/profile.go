package fake

import (
	"context"
	"sync"

	"github.com/supremind/accessgate/types"
)

var _ types.ProfilePersister = (*profilePersister)(nil)

type profilePersister struct {
	sync.Mutex
	polices map[types.ProfilePolicy]struct{}
	hub     *hub[types.ProfileChange]
}

// NewProfilePersister returns a fake profile persister which should not be used in real works
func NewProfilePersister() *profilePersister {
	return &profilePersister{
		polices: make(map[types.ProfilePolicy]struct{}),
		hub:     newHub[types.ProfileChange](),
	}
}

func (p *profilePersister) Insert(id types.Identity, c types.Capability) error {
	policy := types.ProfilePolicy{Identity: id, Capability: c}

	p.Lock()
	if _, ok := p.polices[policy]; ok {
		p.Unlock()
		return nil
	}
	p.polices[policy] = struct{}{}
	p.Unlock()

	p.hub.publish(types.ProfileChange{ProfilePolicy: policy, Method: types.PersistInsert})
	return nil
}

func (p *profilePersister) Remove(id types.Identity, c types.Capability) error {
	policy := types.ProfilePolicy{Identity: id, Capability: c}

	p.Lock()
	if _, ok := p.polices[policy]; !ok {
		p.Unlock()
		return nil
	}
	delete(p.polices, policy)
	p.Unlock()

	p.hub.publish(types.ProfileChange{ProfilePolicy: policy, Method: types.PersistDelete})
	return nil
}

func (p *profilePersister) List() ([]types.ProfilePolicy, error) {
	p.Lock()
	defer p.Unlock()

	polices := make([]types.ProfilePolicy, 0, len(p.polices))
	for policy := range p.polices {
		polices = append(polices, policy)
	}
	return polices, nil
}

func (p *profilePersister) Watch(ctx context.Context) (<-chan types.ProfileChange, error) {
	return p.hub.watch(ctx), nil
}
