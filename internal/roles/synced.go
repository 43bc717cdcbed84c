package roles

import (
	"sync"

	"github.com/supremind/accessgate/types"
)

var _ types.Roles = (*syncedRoles)(nil)

// syncedRoles makes the inner roles be safe in concurrent usages
type syncedRoles struct {
	r types.Roles
	sync.RWMutex
}

func newSyncedRoles(r types.Roles) *syncedRoles {
	return &syncedRoles{r: r}
}

func (r *syncedRoles) Owner() types.Identity {
	r.RLock()
	defer r.RUnlock()
	return r.r.Owner()
}

func (r *syncedRoles) Admins() []types.Identity {
	r.RLock()
	defer r.RUnlock()
	return r.r.Admins()
}

func (r *syncedRoles) IsOwner(id types.Identity) bool {
	r.RLock()
	defer r.RUnlock()
	return r.r.IsOwner(id)
}

func (r *syncedRoles) IsAdmin(id types.Identity) bool {
	r.RLock()
	defer r.RUnlock()
	return r.r.IsAdmin(id)
}

func (r *syncedRoles) SetOwner(id types.Identity) error {
	r.Lock()
	defer r.Unlock()
	return r.r.SetOwner(id)
}

func (r *syncedRoles) Enroll(ids ...types.Identity) error {
	r.Lock()
	defer r.Unlock()
	return r.r.Enroll(ids...)
}

func (r *syncedRoles) Dismiss(ids ...types.Identity) error {
	r.Lock()
	defer r.Unlock()
	return r.r.Dismiss(ids...)
}
