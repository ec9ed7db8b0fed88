package scoped_test

import (
	"context"
	"fmt"

	scoped "github.com/pumped-fn/scoped-go"
)

type Counter struct {
	*scoped.Notifier[int]
}

func (c *Counter) Increment() {
	c.Update(func(n int) int { return n + 1 })
}

var counterProvider = scoped.Value(func(ref *scoped.Ref) *Counter {
	return &Counter{Notifier: scoped.NewNotifier(func() int { return 0 })}
}, scoped.WithLabel("counter"))

func ExampleListen() {
	scope := scoped.NewScope()
	defer scope.Dispose()

	scoped.Listen(scope, counterProvider, func(prev, next int) {
		fmt.Printf("counter %d -> %d\n", prev, next)
	}, false)

	c, _ := scoped.Read(scope, counterProvider)
	c.Increment()
	c.Increment()

	// Output:
	// counter 0 -> 1
	// counter 1 -> 2
}

func ExampleScope_Child() {
	root := scoped.NewScope()
	defer root.Dispose()

	builds := 0
	session := scoped.Value(func(ref *scoped.Ref) int {
		builds++
		return builds
	})

	left, _ := root.Child()
	right, _ := root.Child()

	a, _ := scoped.Read(left, session)
	b, _ := scoped.Read(right, session)
	fmt.Println(a, b, left.Owner(session) == left, root.Owner(session) == nil)

	// Output:
	// 1 2 true true
}

func ExampleScope_Run() {
	root := scoped.NewScope()
	defer root.Dispose()

	err := root.Run(context.Background(), func(ctx context.Context, s *scoped.Scope) error {
		s.OnDispose(func() error {
			fmt.Println("request scope closed")
			return nil
		})
		fmt.Println("handling request")
		return nil
	})
	fmt.Println("err:", err)

	// Output:
	// handling request
	// request scope closed
	// err: <nil>
}
