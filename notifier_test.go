package scoped

import "testing"

func TestNotifier_BuildRunsOnce(t *testing.T) {
	builds := 0
	n := NewNotifier(func() string {
		builds++
		return "initial"
	})

	if builds != 0 {
		t.Fatal("expected build to be lazy")
	}
	if n.State() != "initial" || n.State() != "initial" {
		t.Error("expected initial state")
	}
	if builds != 1 {
		t.Errorf("expected build to run once, ran %d times", builds)
	}
}

func TestNotifier_SetStateBeforeFirstRead(t *testing.T) {
	builds := 0
	n := NewNotifier(func() int {
		builds++
		return 1
	})

	n.SetState(5)
	if n.State() != 5 {
		t.Errorf("expected explicit state to win over build, got %d", n.State())
	}
	if builds != 0 {
		t.Errorf("expected build to be skipped, ran %d times", builds)
	}
}

func TestNotifier_NotifiesInRegistrationOrder(t *testing.T) {
	n := NewNotifier(func() int { return 0 })

	var order []string
	n.AddListener(func(v int) { order = append(order, "a") }, false)
	n.AddListener(func(v int) { order = append(order, "b") }, false)
	n.AddListener(func(v int) { order = append(order, "c") }, false)

	n.SetState(1)

	expected := []string{"a", "b", "c"}
	if len(order) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, order)
	}
	for i, want := range expected {
		if order[i] != want {
			t.Errorf("at index %d: expected %s, got %s", i, want, order[i])
		}
	}
}

func TestNotifier_SkipsEqualState(t *testing.T) {
	n := NewNotifier(func() int { return 3 })
	calls := 0
	n.AddListener(func(int) { calls++ }, false)

	n.State()
	n.SetState(3)
	if calls != 0 {
		t.Errorf("expected no notification for an equal value, got %d", calls)
	}

	n.SetState(4)
	if calls != 1 {
		t.Errorf("expected one notification, got %d", calls)
	}
}

func TestNotifier_CustomUpdateShouldNotify(t *testing.T) {
	n := NewNotifier(
		func() int { return 0 },
		WithUpdateShouldNotify(func(old, next int) bool { return next%2 == 0 }),
	)

	var seen []int
	n.AddListener(func(v int) { seen = append(seen, v) }, false)

	for i := 1; i <= 4; i++ {
		n.SetState(i)
	}

	if len(seen) != 2 || seen[0] != 2 || seen[1] != 4 {
		t.Errorf("expected [2 4], got %v", seen)
	}
	if n.State() != 4 {
		t.Errorf("expected state to be stored regardless of notification, got %d", n.State())
	}
}

func TestNotifier_FireImmediately(t *testing.T) {
	n := NewNotifier(func() string { return "now" })

	var seen []string
	n.AddListener(func(v string) { seen = append(seen, v) }, true)

	if len(seen) != 1 || seen[0] != "now" {
		t.Errorf("expected immediate call with current state, got %v", seen)
	}
}

func TestNotifier_RemoveListener(t *testing.T) {
	n := NewNotifier(func() int { return 0 })
	calls := 0
	h := n.AddListener(func(int) { calls++ }, false)

	n.SetState(1)
	if !n.RemoveListener(h) {
		t.Error("expected removal to succeed")
	}
	if n.RemoveListener(h) {
		t.Error("expected second removal to be a no-op")
	}
	n.SetState(2)

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestNotifier_ListenerRemovesAnotherDuringNotify(t *testing.T) {
	n := NewNotifier(func() int { return 0 })

	var second ListenerHandle
	secondCalls := 0
	n.AddListener(func(int) { n.RemoveListener(second) }, false)
	second = n.AddListener(func(int) { secondCalls++ }, false)

	n.SetState(1)
	if secondCalls != 0 {
		t.Errorf("expected removed listener to be skipped, got %d calls", secondCalls)
	}
}

func TestNotifier_Update(t *testing.T) {
	n := NewNotifier(func() int { return 10 })
	n.Update(func(v int) int { return v * 2 })

	if n.State() != 20 {
		t.Errorf("expected 20, got %d", n.State())
	}
}

func TestDefaultUpdateShouldNotify(t *testing.T) {
	type point struct{ X, Y int }
	type holder struct{ V any }

	shared := []int{1, 2}
	m := map[string]int{"a": 1}
	ptr := &point{1, 2}

	cases := []struct {
		name    string
		changed bool
		got     bool
	}{
		{"equal ints", false, DefaultUpdateShouldNotify(1, 1)},
		{"different ints", true, DefaultUpdateShouldNotify(1, 2)},
		{"equal structs", false, DefaultUpdateShouldNotify(point{1, 2}, point{1, 2})},
		{"same pointer", false, DefaultUpdateShouldNotify(ptr, ptr)},
		{"equal pointees", true, DefaultUpdateShouldNotify(ptr, &point{1, 2})},
		{"same slice", false, DefaultUpdateShouldNotify(shared, shared)},
		{"equal slice contents", true, DefaultUpdateShouldNotify(shared, []int{1, 2})},
		{"same map", false, DefaultUpdateShouldNotify(m, m)},
		{"nil to value", true, DefaultUpdateShouldNotify[any](nil, 1)},
		{"nil to nil", false, DefaultUpdateShouldNotify[any](nil, nil)},
		{"uncomparable field", true, DefaultUpdateShouldNotify(holder{shared}, holder{shared})},
	}

	for _, tc := range cases {
		if tc.got != tc.changed {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.changed, tc.got)
		}
	}
}
