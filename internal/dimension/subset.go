package dimension

// Subset is a derived set of arena handles, kept in arena order.
type Subset struct {
	members []int
	mask    []bool
}

func newSubset(n int, pred func(h int) bool) Subset {
	s := Subset{mask: make([]bool, n)}
	for h := 0; h < n; h++ {
		if pred(h) {
			s.mask[h] = true
			s.members = append(s.members, h)
		}
	}
	return s
}

// Has reports membership of handle h.
func (s Subset) Has(h int) bool { return h >= 0 && h < len(s.mask) && s.mask[h] }

// Members returns the handles in arena order. The slice must not be modified.
func (s Subset) Members() []int { return s.members }

func (s Subset) Len() int { return len(s.members) }

// Minus returns s without the members of o.
func (s Subset) Minus(o Subset) Subset {
	return newSubset(max(len(s.mask), len(o.mask)), func(h int) bool { return s.Has(h) && !o.Has(h) })
}

// Intersect returns the members present in both.
func (s Subset) Intersect(o Subset) Subset {
	return newSubset(max(len(s.mask), len(o.mask)), func(h int) bool { return s.Has(h) && o.Has(h) })
}

// Union returns the members present in either.
func (s Subset) Union(o Subset) Subset {
	return newSubset(max(len(s.mask), len(o.mask)), func(h int) bool { return s.Has(h) || o.Has(h) })
}
