package profile

import (
	"sync"

	"github.com/supremind/accessgate/types"
)

var _ types.Profiles = (*syncedProfiles)(nil)

type syncedProfiles struct {
	p types.Profiles
	sync.RWMutex
}

// newSyncedProfiles makes the given Profiles safe in concurrent usages
func newSyncedProfiles(p types.Profiles) *syncedProfiles {
	if p == nil {
		p = newThinProfiles()
	}
	return &syncedProfiles{p: p}
}

func (p *syncedProfiles) Grant(id types.Identity, c types.Capability) error {
	p.Lock()
	defer p.Unlock()
	return p.p.Grant(id, c)
}

func (p *syncedProfiles) Revoke(id types.Identity, c types.Capability) error {
	p.Lock()
	defer p.Unlock()
	return p.p.Revoke(id, c)
}

func (p *syncedProfiles) Can(id types.Identity, c types.Capability) bool {
	p.RLock()
	defer p.RUnlock()
	return p.p.Can(id, c)
}

func (p *syncedProfiles) CapabilitiesOf(id types.Identity) map[types.Capability]struct{} {
	p.RLock()
	defer p.RUnlock()
	return p.p.CapabilitiesOf(id)
}

func (p *syncedProfiles) HoldersOf(c types.Capability) map[types.Identity]struct{} {
	p.RLock()
	defer p.RUnlock()
	return p.p.HoldersOf(c)
}
