package scoped

// Derive1 creates a provider built from the value of another provider. The
// dependency is read through the factory's Ref, so it resolves from the
// owning scope and shows up in the dependency graph.
func Derive1[T, D1 any](
	d1 *Provider[D1],
	factory func(*Ref, D1) (T, error),
	opts ...ProviderOption,
) *Provider[T] {
	return Provide(func(ref *Ref) (T, error) {
		v1, err := Read(ref, d1)
		if err != nil {
			var zero T
			return zero, err
		}
		return factory(ref, v1)
	}, opts...)
}

func Derive2[T, D1, D2 any](
	d1 *Provider[D1],
	d2 *Provider[D2],
	factory func(*Ref, D1, D2) (T, error),
	opts ...ProviderOption,
) *Provider[T] {
	return Provide(func(ref *Ref) (T, error) {
		var zero T
		v1, err := Read(ref, d1)
		if err != nil {
			return zero, err
		}
		v2, err := Read(ref, d2)
		if err != nil {
			return zero, err
		}
		return factory(ref, v1, v2)
	}, opts...)
}

func Derive3[T, D1, D2, D3 any](
	d1 *Provider[D1],
	d2 *Provider[D2],
	d3 *Provider[D3],
	factory func(*Ref, D1, D2, D3) (T, error),
	opts ...ProviderOption,
) *Provider[T] {
	return Provide(func(ref *Ref) (T, error) {
		var zero T
		v1, err := Read(ref, d1)
		if err != nil {
			return zero, err
		}
		v2, err := Read(ref, d2)
		if err != nil {
			return zero, err
		}
		v3, err := Read(ref, d3)
		if err != nil {
			return zero, err
		}
		return factory(ref, v1, v2, v3)
	}, opts...)
}
