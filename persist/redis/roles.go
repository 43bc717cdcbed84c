package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/supremind/accessgate/types"
)

var _ types.RolePersister = (*RolePersister)(nil)

// RolePersister is a RolePersister backed by redis.
// The admin set is a sorted set scored by a sequence number, so the joining order survives.
type RolePersister struct {
	*store
}

// NewRolePersister uses the given redis client as backend to persist roles
func NewRolePersister(client redis.UniversalClient, opts ...Option) *RolePersister {
	return &RolePersister{newStore(client, opts...)}
}

func (p *RolePersister) ownerKey() string   { return p.key("roles", "owner") }
func (p *RolePersister) adminsKey() string  { return p.key("roles", "admins") }
func (p *RolePersister) seqKey() string     { return p.key("roles", "seq") }
func (p *RolePersister) changesKey() string { return p.key("roles", "changes") }

// SetOwner records the owner
func (p *RolePersister) SetOwner(id types.Identity) error {
	ctx, cancel := p.op()
	defer cancel()

	method := types.PersistUpdate
	prev, e := p.client.GetSet(ctx, p.ownerKey(), string(id)).Result()
	if errors.Is(e, redis.Nil) {
		method = types.PersistInsert
	} else if e != nil {
		return e
	}
	if prev == string(id) {
		return nil
	}

	p.log.V(4).Info("set owner", "owner", id, "previous", prev)
	return p.publish(ctx, p.changesKey(), types.RoleChange{Identity: id, Role: types.OwnerRole, Method: method})
}

// InsertAdmin appends an admin
func (p *RolePersister) InsertAdmin(id types.Identity) error {
	ctx, cancel := p.op()
	defer cancel()

	seq, e := p.client.Incr(ctx, p.seqKey()).Result()
	if e != nil {
		return e
	}
	added, e := p.client.ZAddNX(ctx, p.adminsKey(), redis.Z{Score: float64(seq), Member: string(id)}).Result()
	if e != nil {
		return e
	}
	if added == 0 {
		return nil
	}

	p.log.V(4).Info("insert admin", "admin", id)
	return p.publish(ctx, p.changesKey(), types.RoleChange{Identity: id, Role: types.AdminRole, Method: types.PersistInsert})
}

// RemoveAdmin removes an admin
func (p *RolePersister) RemoveAdmin(id types.Identity) error {
	ctx, cancel := p.op()
	defer cancel()

	removed, e := p.client.ZRem(ctx, p.adminsKey(), string(id)).Result()
	if e != nil {
		return e
	}
	if removed == 0 {
		return nil
	}

	p.log.V(4).Info("remove admin", "admin", id)
	return p.publish(ctx, p.changesKey(), types.RoleChange{Identity: id, Role: types.AdminRole, Method: types.PersistDelete})
}

// List returns the persisted owner and admins
func (p *RolePersister) List() (types.RoleSnapshot, error) {
	ctx, cancel := p.op()
	defer cancel()

	var snap types.RoleSnapshot
	owner, e := p.client.Get(ctx, p.ownerKey()).Result()
	if e != nil && !errors.Is(e, redis.Nil) {
		return snap, e
	}
	snap.Owner = types.Identity(owner)

	members, e := p.client.ZRange(ctx, p.adminsKey(), 0, -1).Result()
	if e != nil {
		return snap, e
	}
	snap.Admins = make([]types.Identity, 0, len(members))
	for _, m := range members {
		snap.Admins = append(snap.Admins, types.Identity(m))
	}
	return snap, nil
}

// Watch changes published by any RolePersister sharing the same prefix
func (p *RolePersister) Watch(ctx context.Context) (<-chan types.RoleChange, error) {
	return watch[types.RoleChange](ctx, p.store, p.changesKey())
}
