package scoped

// Controller provides lifecycle control for a provider's value as seen from
// one scope or ref.
type Controller[T any] struct {
	provider *Provider[T]
	reader   Reader
}

// Accessor creates a controller for a provider
func Accessor[T any](r Reader, p *Provider[T]) *Controller[T] {
	return &Controller[T]{
		provider: p,
		reader:   r,
	}
}

// Get retrieves the value, building it if needed
func (c *Controller[T]) Get() (T, error) {
	return Read(c.reader, c.provider)
}

// Peek retrieves the cached value without building it or creating a slot
func (c *Controller[T]) Peek() (T, bool) {
	s, _, _ := c.reader.target()
	val, ok := s.peek(c.provider)
	if !ok {
		var zero T
		return zero, false
	}
	typed, err := castSlot[T](c.provider, val)
	if err != nil {
		return typed, false
	}
	return typed, true
}

// Invalidate clears the cached value
func (c *Controller[T]) Invalidate() error {
	return Invalidate(c.reader, c.provider)
}

// Reload invalidates and immediately rebuilds
func (c *Controller[T]) Reload() (T, error) {
	if err := c.Invalidate(); err != nil {
		var zero T
		return zero, err
	}
	return c.Get()
}

// IsCached checks if the value is currently cached
func (c *Controller[T]) IsCached() bool {
	_, ok := c.Peek()
	return ok
}
