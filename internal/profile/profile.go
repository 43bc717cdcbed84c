package profile

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/supremind/accessgate/types"
)

// New creates concurrent safe profiles, persisted if p is not nil
func New(ctx context.Context, p types.ProfilePersister, l logr.Logger) (types.Profiles, error) {
	if p == nil {
		return newSyncedProfiles(newThinProfiles()), nil
	}
	return newPersistedProfiles(ctx, newThinProfiles(), p, l)
}
