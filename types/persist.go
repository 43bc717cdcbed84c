package types

import "context"

// RolePersister persists the owner and the admin set to an external storage
type RolePersister interface {
	// SetOwner records the owner
	SetOwner(Identity) error

	// InsertAdmin appends an admin, inserting an existing one is a no-op
	InsertAdmin(Identity) error

	// RemoveAdmin removes an admin, removing a non-member is a no-op
	RemoveAdmin(Identity) error

	// List returns the persisted owner and admins, the owner is empty if nothing is persisted yet
	List() (RoleSnapshot, error)

	// Watch any changes occurred about the roles in the persister
	Watch(context.Context) (<-chan RoleChange, error)
}

// ProfilePersister persists identity-capability polices to an external storage
type ProfilePersister interface {
	// Insert a policy, inserting an existing one is a no-op
	Insert(Identity, Capability) error

	// Remove a policy, removing a missing one is a no-op
	Remove(Identity, Capability) error

	// List all polices from the persister
	List() ([]ProfilePolicy, error)

	// Watch any changes occurred about the polices in the persister
	Watch(context.Context) (<-chan ProfileChange, error)
}

// RoleSnapshot is the persisted state of roles
type RoleSnapshot struct {
	Owner  Identity
	Admins []Identity
}

// RoleKind tells which role a RoleChange is about
type RoleKind string

// kinds of roles
const (
	OwnerRole RoleKind = "owner"
	AdminRole RoleKind = "admin"
)

// RoleChange denotes a changing event about the owner or the admin set
type RoleChange struct {
	Identity Identity      `json:"identity"`
	Role     RoleKind      `json:"role"`
	Method   PersistMethod `json:"method"`
}

// ProfilePolicy is an identity-capability policy
type ProfilePolicy struct {
	Identity   Identity   `json:"identity"`
	Capability Capability `json:"capability"`
}

// ProfileChange denotes a changing event about a ProfilePolicy
type ProfileChange struct {
	ProfilePolicy
	Method PersistMethod `json:"method"`
}

// PersistMethod defines what happened about the policies
type PersistMethod string

// possible changes could be happened about policies
const (
	PersistInsert PersistMethod = "insert"
	PersistDelete PersistMethod = "delete"
	PersistUpdate PersistMethod = "update"
)
