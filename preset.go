package accessgate

import "github.com/supremind/accessgate/types"

// SuperUser satisfies the admin level without being in the admin set
func SuperUser(su types.Identity) types.PresetPolicy {
	return func(_ types.Authorizer, id types.Identity, _ types.Level) bool {
		return su.Valid() && id == su
	}
}

// CapabilityHolders lets identities holding the capability satisfy the admin level
func CapabilityHolders(c types.Capability) types.PresetPolicy {
	return func(authz types.Authorizer, id types.Identity, _ types.Level) bool {
		return authz.Can(id, c)
	}
}
