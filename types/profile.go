package types

// Profiles maps identities to sets of capabilities, without checking who is asking
type Profiles interface {
	// Grant a capability to the identity, granting it twice is a no-op
	Grant(Identity, Capability) error

	// Revoke a capability from the identity, revoking an ungranted one is a no-op
	Revoke(Identity, Capability) error

	// Can tells if the identity holds the capability
	Can(Identity, Capability) bool

	// CapabilitiesOf returns all capabilities held by the identity
	CapabilitiesOf(Identity) map[Capability]struct{}

	// HoldersOf returns all identities holding the capability
	HoldersOf(Capability) map[Identity]struct{}
}
