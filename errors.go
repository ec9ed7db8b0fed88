package scoped

import (
	"errors"
	"fmt"
)

var (
	// ErrUseAfterDispose is matched by every error returned from an operation
	// invoked on a disposed scope.
	ErrUseAfterDispose = errors.New("scoped: scope used after dispose")

	// ErrRemountDisabled is returned by Remount on scopes created without WithRemount.
	ErrRemountDisabled = errors.New("scoped: remount is not enabled for this scope")

	// ErrNilObservable is returned by Listen when the provider built a nil observable.
	ErrNilObservable = errors.New("scoped: provider built a nil observable")

	// ErrCircularDependency is returned when a factory reads the provider it is building.
	ErrCircularDependency = errors.New("scoped: circular dependency")
)

// UseAfterDisposeError reports the operation that was attempted on a disposed scope.
type UseAfterDisposeError struct {
	Op      string
	ScopeID string
}

func (e *UseAfterDisposeError) Error() string {
	return fmt.Sprintf("scoped: %s called on disposed scope %s", e.Op, e.ScopeID)
}

func (e *UseAfterDisposeError) Unwrap() error {
	return ErrUseAfterDispose
}

// TypeMismatchError is returned when a cached slot value does not have the
// type declared by the provider reading it.
type TypeMismatchError struct {
	Provider AnyProvider
	Value    any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("scoped: cached value %T does not match provider %s", e.Value, e.Provider)
}

func castSlot[T any](p AnyProvider, value any) (T, error) {
	if value == nil {
		var zero T
		return zero, nil
	}

	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, &TypeMismatchError{Provider: p, Value: value}
	}

	return typed, nil
}

func useAfterDispose(op string, s *Scope) error {
	return &UseAfterDisposeError{Op: op, ScopeID: s.id}
}
