package scoped

import (
	"context"
	"fmt"
	"reflect"
)

// Reader is anything providers can be read through: a *Scope, or the *Ref
// passed to a factory.
type Reader interface {
	target() (*Scope, context.Context, *Ref)
}

func (s *Scope) target() (*Scope, context.Context, *Ref) {
	return s, s.ctx, nil
}

// Read returns p's value as seen from r, building it in the first scope of
// the chain that reads it. Later reads from that scope or its descendants
// return the cached value until the slot is invalidated.
func Read[T any](r Reader, p *Provider[T]) (T, error) {
	s, ctx, from := r.target()

	value, err := s.read(ctx, "read", p, from)
	if err != nil {
		var zero T
		return zero, err
	}
	return castSlot[T](p, value)
}

// MustRead is like Read but panics on error.
func MustRead[T any](r Reader, p *Provider[T]) T {
	value, err := Read(r, p)
	if err != nil {
		panic(err)
	}
	return value
}

// Invalidate clears p's cached value so the next read runs the factory again.
// Listeners of the previous value are not notified. Invalidating a provider
// nobody has read yet still creates its (empty) slot on the calling scope.
func Invalidate(r Reader, p AnyProvider) error {
	s, ctx, _ := r.target()
	return s.invalidate(ctx, p)
}

// Listen subscribes onChange to the observable built by p. Each change calls
// onChange with the previously observed and the new state. With
// fireImmediately, onChange is called once right away with the zero value and
// the current state.
//
// The subscription is removed when the listening scope is disposed, wherever
// p's state lives.
func Listen[S any, N Observable[S]](r Reader, p *Provider[N], onChange func(prev, next S), fireImmediately bool) error {
	s, ctx, from := r.target()
	if !s.mounted {
		return useAfterDispose("listen", s)
	}

	value, err := s.read(ctx, "listen", p, from)
	if err != nil {
		return err
	}
	notifier, err := castSlot[N](p, value)
	if err != nil {
		return err
	}
	if isNil(notifier) {
		return fmt.Errorf("%w: %s", ErrNilObservable, p)
	}

	prev := notifier.State()
	handle := notifier.AddListener(func(next S) {
		old := prev
		prev = next
		onChange(old, next)
	}, false)

	if fireImmediately {
		var zero S
		onChange(zero, prev)
	}

	s.addDisposer(func() error {
		notifier.RemoveListener(handle)
		return nil
	})
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
