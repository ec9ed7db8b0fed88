package scoped

import (
	"context"
	"errors"
)

// Run creates a child scope, calls fn with it and disposes the child once fn
// returns, including when fn fails or panics. The child's context is ctx.
//
// Run does nothing on a disposed scope. fn may block; it must not use the
// child after returning.
func (s *Scope) Run(ctx context.Context, fn func(context.Context, *Scope) error) (err error) {
	if !s.mounted {
		return nil
	}

	// Check for cancellation before creating the child
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	child, err := s.Child(WithContext(ctx))
	if err != nil {
		return err
	}

	defer func() {
		if disposeErr := child.Dispose(); disposeErr != nil {
			err = errors.Join(err, disposeErr)
		}
	}()

	return fn(ctx, child)
}
