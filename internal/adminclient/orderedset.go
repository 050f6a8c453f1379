package adminclient

// OrderedSet keeps values in arrival order with at most one value per key.
// It is not safe for concurrent use; owners guard it with their own lock.
type OrderedSet[K comparable, V any] struct {
	key   func(V) K
	items []V
	index map[K]int
}

func NewOrderedSet[K comparable, V any](key func(V) K) *OrderedSet[K, V] {
	return &OrderedSet[K, V]{key: key, index: make(map[K]int)}
}

// Insert appends v unless its key is already present, and reports whether it did.
func (s *OrderedSet[K, V]) Insert(v V) bool {
	k := s.key(v)
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = len(s.items)
	s.items = append(s.items, v)
	return true
}

// Upsert replaces the value stored under v's key in place, or appends it.
func (s *OrderedSet[K, V]) Upsert(v V) {
	if i, ok := s.index[s.key(v)]; ok {
		s.items[i] = v
		return
	}
	s.Insert(v)
}

func (s *OrderedSet[K, V]) Has(k K) bool {
	_, ok := s.index[k]
	return ok
}

func (s *OrderedSet[K, V]) Get(k K) (V, bool) {
	if i, ok := s.index[k]; ok {
		return s.items[i], true
	}
	var zero V
	return zero, false
}

func (s *OrderedSet[K, V]) Len() int { return len(s.items) }

// Last returns the most recently inserted value.
func (s *OrderedSet[K, V]) Last() (V, bool) {
	var zero V
	if len(s.items) == 0 {
		return zero, false
	}
	return s.items[len(s.items)-1], true
}

// Values returns a copy in arrival order.
func (s *OrderedSet[K, V]) Values() []V {
	out := make([]V, len(s.items))
	copy(out, s.items)
	return out
}
