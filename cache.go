package scoped

// slot holds one provider's cached value inside the scope that owns it.
type slot struct {
	index    int
	provider AnyProvider
	value    any
	built    bool
	building bool
	deps     []AnyProvider
}

func (s *slot) store(value any) {
	s.value = value
	s.built = true
}

func (s *slot) clear() {
	s.value = nil
	s.built = false
	s.deps = nil
}

// slotStore is the per-scope registry. Slot indexes follow insertion order
// and are never reused.
type slotStore struct {
	index map[uint64]int
	slots []*slot
}

func newSlotStore() *slotStore {
	return &slotStore{
		index: make(map[uint64]int),
	}
}

func (st *slotStore) lookup(p AnyProvider) (*slot, bool) {
	i, ok := st.index[p.ID()]
	if !ok {
		return nil, false
	}
	return st.slots[i], true
}

func (st *slotStore) create(p AnyProvider) *slot {
	if existing, ok := st.lookup(p); ok {
		return existing
	}

	s := &slot{
		index:    len(st.slots),
		provider: p,
	}
	st.index[p.ID()] = s.index
	st.slots = append(st.slots, s)
	return s
}

func (st *slotStore) Size() int {
	return len(st.slots)
}

func (st *slotStore) Range(fn func(s *slot) bool) {
	for _, s := range st.slots {
		if !fn(s) {
			return
		}
	}
}
