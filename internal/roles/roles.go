package roles

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/supremind/accessgate/types"
)

// New creates concurrent safe roles owned by owner, persisted if p is not nil
func New(ctx context.Context, owner types.Identity, p types.RolePersister, l logr.Logger) (types.Roles, error) {
	if !owner.Valid() {
		return nil, fmt.Errorf("%w: %w", types.ErrNoOwner, types.ErrInvalidIdentity)
	}
	if p == nil {
		return newSyncedRoles(newThinRoles(owner)), nil
	}
	return newPersistedRoles(ctx, owner, p, l)
}
