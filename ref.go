package scoped

import "context"

// Ref is handed to a provider's factory while it runs. It is bound to the
// scope that owns the provider's slot, so reads made through it resolve from
// the owner's point of view and cleanups registered on it run when the owner
// is disposed.
type Ref struct {
	scope *Scope
	slot  *slot
	ctx   context.Context
}

func newRef(owner *Scope, sl *slot, ctx context.Context) *Ref {
	return &Ref{
		scope: owner,
		slot:  sl,
		ctx:   ctx,
	}
}

// Scope returns the owning scope.
func (r *Ref) Scope() *Scope {
	return r.scope
}

// Provider returns the provider being built.
func (r *Ref) Provider() AnyProvider {
	return r.slot.provider
}

// Context returns the context the build runs under.
func (r *Ref) Context() context.Context {
	return r.ctx
}

// OnDispose registers a cleanup callback on the owning scope.
func (r *Ref) OnDispose(fn func() error) (DisposeHandle, error) {
	return r.scope.OnDispose(fn)
}

// GetTag looks a typed tag up on the owning scope and its ancestors.
func GetTag[T any](r *Ref, tag Tag[T]) (T, bool) {
	return tag.GetFromScope(r.scope)
}

// GetTagOrDefault retrieves a typed tag or returns a default value
func GetTagOrDefault[T any](r *Ref, tag Tag[T], defaultVal T) T {
	if val, ok := tag.GetFromScope(r.scope); ok {
		return val
	}
	return defaultVal
}

func (r *Ref) recordDependency(p AnyProvider) {
	r.slot.deps = appendUnique(r.slot.deps, p)
}

func (r *Ref) target() (*Scope, context.Context, *Ref) {
	return r.scope, r.ctx, r
}
