package scoped

// Tag is a type-safe key for metadata
type Tag[T any] struct {
	key string
}

// LabelTag holds the debug label set with WithLabel.
var LabelTag = NewTag[string]("scoped.label")

// NewTag creates a new tag with the given key
func NewTag[T any](key string) Tag[T] {
	return Tag[T]{key: key}
}

// Key returns the tag's key (for debugging)
func (t Tag[T]) Key() string {
	return t.key
}

// Get retrieves the tag value from a provider
func (t Tag[T]) Get(p AnyProvider) (T, bool) {
	val, ok := p.GetTag(t)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := val.(T)
	return typed, ok
}

// GetOrDefault retrieves the tag value or returns a default
func (t Tag[T]) GetOrDefault(p AnyProvider, defaultVal T) T {
	if val, ok := t.Get(p); ok {
		return val
	}
	return defaultVal
}

// GetFromScope looks the tag up on the scope and then on its ancestors. A
// value of the wrong type, stored through Scope.SetTag, reads as missing.
func (t Tag[T]) GetFromScope(s *Scope) (T, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if val, ok := cur.tags[t]; ok {
			typed, ok := val.(T)
			return typed, ok
		}
	}
	var zero T
	return zero, false
}

// SetOnScope stores the tag value on a scope
func (t Tag[T]) SetOnScope(s *Scope, val T) {
	s.tags[t] = val
}
