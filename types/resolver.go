package types

import "context"

// Resolver supplies the identity of the current caller, which is trusted as authentic
type Resolver interface {
	Caller(context.Context) (Identity, error)
}

// ResolverFunc adapts a function to Resolver
type ResolverFunc func(context.Context) (Identity, error)

// Caller implements Resolver
func (f ResolverFunc) Caller(ctx context.Context) (Identity, error) {
	return f(ctx)
}

type callerKey struct{}
type callKey struct{}

// WithCaller returns a context carrying the caller identity
func WithCaller(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, callerKey{}, id)
}

// WithCall returns a context carrying the current call, its caller is the caller of the context too
func WithCall(ctx context.Context, call Call) context.Context {
	return context.WithValue(WithCaller(ctx, call.Caller), callKey{}, call)
}

// CallFrom returns the call carried by ctx
func CallFrom(ctx context.Context) (Call, bool) {
	call, ok := ctx.Value(callKey{}).(Call)
	return call, ok
}

// ContextResolver resolves callers set by WithCaller or WithCall
var ContextResolver Resolver = ResolverFunc(func(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(callerKey{}).(Identity)
	if !ok || !id.Valid() {
		return "", ErrNoCaller
	}
	return id, nil
})
