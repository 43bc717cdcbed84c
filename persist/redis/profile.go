package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/supremind/accessgate/types"
)

var _ types.ProfilePersister = (*ProfilePersister)(nil)

// ProfilePersister is a ProfilePersister backed by a redis set of encoded polices
type ProfilePersister struct {
	*store
}

// NewProfilePersister uses the given redis client as backend to persist profile polices
func NewProfilePersister(client redis.UniversalClient, opts ...Option) *ProfilePersister {
	return &ProfilePersister{newStore(client, opts...)}
}

func (p *ProfilePersister) policesKey() string { return p.key("profiles") }
func (p *ProfilePersister) changesKey() string { return p.key("profiles", "changes") }

func encodePolicy(id types.Identity, c types.Capability) (string, types.ProfilePolicy, error) {
	policy := types.ProfilePolicy{Identity: id, Capability: c}
	raw, e := json.Marshal(policy)
	return string(raw), policy, e
}

// Insert a policy
func (p *ProfilePersister) Insert(id types.Identity, c types.Capability) error {
	member, policy, e := encodePolicy(id, c)
	if e != nil {
		return e
	}

	ctx, cancel := p.op()
	defer cancel()

	added, e := p.client.SAdd(ctx, p.policesKey(), member).Result()
	if e != nil {
		return e
	}
	if added == 0 {
		return nil
	}

	p.log.V(4).Info("insert policy", "identity", id, "capability", c)
	return p.publish(ctx, p.changesKey(), types.ProfileChange{ProfilePolicy: policy, Method: types.PersistInsert})
}

// Remove a policy
func (p *ProfilePersister) Remove(id types.Identity, c types.Capability) error {
	member, policy, e := encodePolicy(id, c)
	if e != nil {
		return e
	}

	ctx, cancel := p.op()
	defer cancel()

	removed, e := p.client.SRem(ctx, p.policesKey(), member).Result()
	if e != nil {
		return e
	}
	if removed == 0 {
		return nil
	}

	p.log.V(4).Info("remove policy", "identity", id, "capability", c)
	return p.publish(ctx, p.changesKey(), types.ProfileChange{ProfilePolicy: policy, Method: types.PersistDelete})
}

// List all polices
func (p *ProfilePersister) List() ([]types.ProfilePolicy, error) {
	ctx, cancel := p.op()
	defer cancel()

	members, e := p.client.SMembers(ctx, p.policesKey()).Result()
	if e != nil {
		return nil, e
	}

	polices := make([]types.ProfilePolicy, 0, len(members))
	for _, m := range members {
		var policy types.ProfilePolicy
		if e := json.Unmarshal([]byte(m), &policy); e != nil {
			p.log.Error(e, "decode policy", "member", m)
			continue
		}
		polices = append(polices, policy)
	}
	return polices, nil
}

// Watch changes published by any ProfilePersister sharing the same prefix
func (p *ProfilePersister) Watch(ctx context.Context) (<-chan types.ProfileChange, error) {
	return watch[types.ProfileChange](ctx, p.store, p.changesKey())
}
