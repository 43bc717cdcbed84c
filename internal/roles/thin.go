package roles

import (
	"fmt"

	"github.com/supremind/accessgate/types"
)

var _ types.Roles = (*thinRoles)(nil)

// thinRoles keeps the owner and an ordered, duplicate free admin set in memory
type thinRoles struct {
	owner   types.Identity
	admins  []types.Identity
	members map[types.Identity]struct{}
}

// newThinRoles seeds owner as both the owner and the only admin
func newThinRoles(owner types.Identity) *thinRoles {
	return &thinRoles{
		owner:   owner,
		admins:  []types.Identity{owner},
		members: map[types.Identity]struct{}{owner: {}},
	}
}

func (r *thinRoles) Owner() types.Identity {
	return r.owner
}

func (r *thinRoles) Admins() []types.Identity {
	out := make([]types.Identity, len(r.admins))
	copy(out, r.admins)
	return out
}

func (r *thinRoles) IsOwner(id types.Identity) bool {
	return id.Valid() && id == r.owner
}

func (r *thinRoles) IsAdmin(id types.Identity) bool {
	_, ok := r.members[id]
	return ok
}

func (r *thinRoles) SetOwner(id types.Identity) error {
	if !id.Valid() {
		return fmt.Errorf("%w: owner", types.ErrInvalidIdentity)
	}
	r.owner = id
	return nil
}

func (r *thinRoles) Enroll(ids ...types.Identity) error {
	if e := validate(ids); e != nil {
		return e
	}

	for _, id := range ids {
		if _, ok := r.members[id]; ok {
			continue
		}
		r.members[id] = struct{}{}
		r.admins = append(r.admins, id)
	}
	return nil
}

func (r *thinRoles) Dismiss(ids ...types.Identity) error {
	if e := validate(ids); e != nil {
		return e
	}

	gone := make(map[types.Identity]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := r.members[id]; ok {
			gone[id] = struct{}{}
			delete(r.members, id)
		}
	}
	if len(gone) == 0 {
		return nil
	}

	kept := make([]types.Identity, 0, len(r.admins)-len(gone))
	for _, id := range r.admins {
		if _, ok := gone[id]; !ok {
			kept = append(kept, id)
		}
	}
	r.admins = kept
	return nil
}

func validate(ids []types.Identity) error {
	for i, id := range ids {
		if !id.Valid() {
			return fmt.Errorf("%w: #%d of %d", types.ErrInvalidIdentity, i, len(ids))
		}
	}
	return nil
}
