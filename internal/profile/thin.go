package profile

import (
	"fmt"

	"github.com/supremind/accessgate/types"
)

var _ types.Profiles = (*thinProfiles)(nil)

// thinProfiles knows only direct identity-capability relationships
type thinProfiles struct {
	byIdentity   map[types.Identity]map[types.Capability]struct{}
	byCapability map[types.Capability]map[types.Identity]struct{}
}

func newThinProfiles() *thinProfiles {
	return &thinProfiles{
		byIdentity:   make(map[types.Identity]map[types.Capability]struct{}),
		byCapability: make(map[types.Capability]map[types.Identity]struct{}),
	}
}

func check(id types.Identity, c types.Capability) error {
	if !id.Valid() {
		return fmt.Errorf("%w: target of %q", types.ErrInvalidIdentity, c)
	}
	if !c.Valid() {
		return fmt.Errorf("%w: for %s", types.ErrInvalidCapability, id)
	}
	return nil
}

func (p *thinProfiles) Grant(id types.Identity, c types.Capability) error {
	if e := check(id, c); e != nil {
		return e
	}

	if _, ok := p.byIdentity[id]; !ok {
		p.byIdentity[id] = make(map[types.Capability]struct{})
	}
	p.byIdentity[id][c] = struct{}{}

	if _, ok := p.byCapability[c]; !ok {
		p.byCapability[c] = make(map[types.Identity]struct{})
	}
	p.byCapability[c][id] = struct{}{}

	return nil
}

func (p *thinProfiles) Revoke(id types.Identity, c types.Capability) error {
	if e := check(id, c); e != nil {
		return e
	}

	if caps, ok := p.byIdentity[id]; ok {
		delete(caps, c)
		if len(caps) == 0 {
			delete(p.byIdentity, id)
		}
	}
	if ids, ok := p.byCapability[c]; ok {
		delete(ids, id)
		if len(ids) == 0 {
			delete(p.byCapability, c)
		}
	}

	return nil
}

func (p *thinProfiles) Can(id types.Identity, c types.Capability) bool {
	_, ok := p.byIdentity[id][c]
	return ok
}

func (p *thinProfiles) CapabilitiesOf(id types.Identity) map[types.Capability]struct{} {
	out := make(map[types.Capability]struct{}, len(p.byIdentity[id]))
	for c := range p.byIdentity[id] {
		out[c] = struct{}{}
	}
	return out
}

func (p *thinProfiles) HoldersOf(c types.Capability) map[types.Identity]struct{} {
	out := make(map[types.Identity]struct{}, len(p.byCapability[c]))
	for id := range p.byCapability[c] {
		out[id] = struct{}{}
	}
	return out
}
