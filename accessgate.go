// Package accessgate guards the calls of a stateful service instance:
// an owner and an ordered admin set authorize privileged calls,
// capabilities are granted to identities by admins,
// and unprivileged callers may pay for access with the credits attached to their calls.
package accessgate

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/supremind/accessgate/internal/authorizer"
	"github.com/supremind/accessgate/internal/profile"
	"github.com/supremind/accessgate/internal/roles"
	"github.com/supremind/accessgate/types"
)

// Gate is the access gate of one service instance
type Gate struct {
	authz    types.Authorizer
	resolver types.Resolver
	log      logr.Logger
}

// New creates a Gate owned by owner, owner is also the first admin
func New(ctx context.Context, owner types.Identity, opts ...GateOption) (*Gate, error) {
	cfg := &GateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.log.GetSink() == nil {
		cfg.log = stdr.New(log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile))
	}
	if cfg.resolver == nil {
		cfg.resolver = types.ContextResolver
	}
	if !owner.Valid() {
		return nil, types.ErrNoOwner
	}

	r, e := roles.New(ctx, owner, cfg.rp, cfg.log.WithName("roles"))
	if e != nil {
		return nil, fmt.Errorf("init roles failed: %w", e)
	}
	p, e := profile.New(ctx, cfg.pp, cfg.log.WithName("profile"))
	if e != nil {
		return nil, fmt.Errorf("init profiles failed: %w", e)
	}

	return &Gate{
		authz:    authorizer.New(r, p, cfg.ledger, cfg.log.WithName("authorizer"), cfg.presets...),
		resolver: cfg.resolver,
		log:      cfg.log,
	}, nil
}

// MustNew is like New but panics on errors, a gate without owner is a bug of the caller
func MustNew(ctx context.Context, owner types.Identity, opts ...GateOption) *Gate {
	g, e := New(ctx, owner, opts...)
	if e != nil {
		panic(e)
	}
	return g
}

// WithRolePersister sets Persister for owner and admins,
// they are lost after restart if not set
func WithRolePersister(p types.RolePersister) GateOption {
	return func(cfg *GateConfig) {
		cfg.rp = p
	}
}

// WithProfilePersister sets Persister for capabilities,
// they are lost after restart if not set
func WithProfilePersister(p types.ProfilePersister) GateOption {
	return func(cfg *GateConfig) {
		cfg.pp = p
	}
}

// WithLedger sets the ledger of credits attached to calls,
// unprivileged callers could not pay for access if not set
func WithLedger(l types.Ledger) GateOption {
	return func(cfg *GateConfig) {
		cfg.ledger = l
	}
}

// WithResolver sets how callers are identified, types.ContextResolver if not set
func WithResolver(r types.Resolver) GateOption {
	return func(cfg *GateConfig) {
		cfg.resolver = r
	}
}

// WithPresetPolices add preset polices to the gate
func WithPresetPolices(presets ...types.PresetPolicy) GateOption {
	return func(cfg *GateConfig) {
		cfg.presets = append(cfg.presets, presets...)
	}
}

// WithLogger sets logger for gate components
func WithLogger(l logr.Logger) GateOption {
	return func(cfg *GateConfig) {
		cfg.log = l
	}
}

// GateConfig works together with GateOption to control the initialization of gates
type GateConfig struct {
	rp       types.RolePersister
	pp       types.ProfilePersister
	ledger   types.Ledger
	resolver types.Resolver
	presets  []types.PresetPolicy
	log      logr.Logger
}

// GateOption controls how to init a gate
type GateOption func(*GateConfig)

// Authorizer returns the underlying authorizer, for callers identifying requesters themselves
func (g *Gate) Authorizer() types.Authorizer {
	return g.authz
}

func (g *Gate) caller(ctx context.Context) (types.Identity, error) {
	id, e := g.resolver.Caller(ctx)
	if e != nil {
		return "", fmt.Errorf("resolve caller: %w", e)
	}
	return id, nil
}

// Owner returns the current owner
func (g *Gate) Owner() types.Identity {
	return g.authz.Owner()
}

// Admins returns the admin set in order
func (g *Gate) Admins() []types.Identity {
	return g.authz.Admins()
}

// IsOwner tells if the identity is exactly the owner
func (g *Gate) IsOwner(id types.Identity) bool {
	return g.authz.IsOwner(id)
}

// IsAdmin tells if the identity is in the admin set
func (g *Gate) IsAdmin(id types.Identity) bool {
	return g.authz.IsAdmin(id)
}

// AddAdmins appends identities to the admin set on behalf of the caller
func (g *Gate) AddAdmins(ctx context.Context, ids ...types.Identity) error {
	requester, e := g.caller(ctx)
	if e != nil {
		return e
	}
	return g.authz.AddAdmins(requester, ids...)
}

// RemoveAdmins removes identities from the admin set on behalf of the caller
func (g *Gate) RemoveAdmins(ctx context.Context, ids ...types.Identity) error {
	requester, e := g.caller(ctx)
	if e != nil {
		return e
	}
	return g.authz.RemoveAdmins(requester, ids...)
}

// TransferOwner hands the ownership from the caller over to newOwner
func (g *Gate) TransferOwner(ctx context.Context, newOwner types.Identity) error {
	requester, e := g.caller(ctx)
	if e != nil {
		return e
	}
	return g.authz.TransferOwner(requester, newOwner)
}

// Grant a capability to target on behalf of the caller
func (g *Gate) Grant(ctx context.Context, target types.Identity, c types.Capability) error {
	requester, e := g.caller(ctx)
	if e != nil {
		return e
	}
	return g.authz.Grant(requester, target, c)
}

// Revoke a capability from target on behalf of the caller
func (g *Gate) Revoke(ctx context.Context, target types.Identity, c types.Capability) error {
	requester, e := g.caller(ctx)
	if e != nil {
		return e
	}
	return g.authz.Revoke(requester, target, c)
}

// Can tells if the identity holds the capability
func (g *Gate) Can(id types.Identity, c types.Capability) bool {
	return g.authz.Can(id, c)
}

// CapabilitiesOf returns all capabilities held by the identity
func (g *Gate) CapabilitiesOf(id types.Identity) map[types.Capability]struct{} {
	return g.authz.CapabilitiesOf(id)
}

// HoldersOf returns all identities holding the capability
func (g *Gate) HoldersOf(c types.Capability) map[types.Identity]struct{} {
	return g.authz.HoldersOf(c)
}

// Authorize decides if the caller satisfies the level
func (g *Gate) Authorize(ctx context.Context, l types.Level) (types.Decision, error) {
	if l == types.Public {
		return types.Granted(), nil
	}
	id, e := g.caller(ctx)
	if e != nil {
		return types.Denied(types.Restricted), e
	}
	return g.authz.Authorize(id, l), nil
}

// Check returns nil if the caller satisfies the level, or an error telling why not
func (g *Gate) Check(ctx context.Context, l types.Level) error {
	d, e := g.Authorize(ctx, l)
	if e != nil {
		return e
	}
	id, _ := g.resolver.Caller(ctx)
	return d.Err(id, l)
}

// Pay authorizes the caller of the call in ctx, or charges price from the credits attached to it
func (g *Gate) Pay(ctx context.Context, l types.Level, price types.Credit) (types.Receipt, error) {
	call, e := g.call(ctx)
	if e != nil {
		return types.Receipt{}, e
	}
	return g.authz.AuthorizeOrPay(ctx, call, l, price)
}

// Release refunds everything attached to the call in ctx
func (g *Gate) Release(ctx context.Context) (types.Receipt, error) {
	call, e := g.call(ctx)
	if e != nil {
		return types.Receipt{}, e
	}
	return g.authz.Release(ctx, call)
}

// call returns the call in ctx, with its caller resolved by the resolver
func (g *Gate) call(ctx context.Context) (types.Call, error) {
	call, ok := types.CallFrom(ctx)
	if !ok {
		return call, types.ErrNoCall
	}
	id, e := g.caller(ctx)
	if e != nil {
		return call, e
	}
	call.Caller = id
	return call, nil
}
