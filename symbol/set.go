package symbol

// Set is a sorted vector of Symbols, keyed by Symbol.order (§3 "Ordered set
// of symbols"). Union, Intersect and Equal operate in linear-merge time over
// the sorted backing slice; Insert and Delete locate their position by
// binary search (find). Union and intersect preserve sortedness, equality
// is element-wise.
type Set struct {
	syms []*Symbol
}

func NewSet(syms ...*Symbol) *Set {
	s := &Set{}
	for _, sym := range syms {
		s.Insert(sym)
	}
	return s
}

func (s *Set) Len() int { return len(s.syms) }

func (s *Set) Slice() []*Symbol {
	out := make([]*Symbol, len(s.syms))
	copy(out, s.syms)
	return out
}

// find binary-searches for the index at which sym is, or would be, inserted
// to keep the vector sorted by order.
func (s *Set) find(sym *Symbol) (int, bool) {
	lo, hi := 0, len(s.syms)
	for lo < hi {
		mid := (lo + hi) / 2
		if s.syms[mid].order < sym.order {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, lo < len(s.syms) && s.syms[lo] == sym
}

func (s *Set) Contains(sym *Symbol) bool {
	_, found := s.find(sym)
	return found
}

// Insert returns true if sym was newly added.
func (s *Set) Insert(sym *Symbol) bool {
	i, found := s.find(sym)
	if found {
		return false
	}
	s.syms = append(s.syms, nil)
	copy(s.syms[i+1:], s.syms[i:])
	s.syms[i] = sym
	return true
}

// Delete returns true if sym was present and removed.
func (s *Set) Delete(sym *Symbol) bool {
	i, found := s.find(sym)
	if !found {
		return false
	}
	s.syms = append(s.syms[:i], s.syms[i+1:]...)
	return true
}

// Union merges other into a new Set in O(len(s)+len(other)) via a linear
// merge of the two sorted vectors.
func (s *Set) Union(other *Set) *Set {
	out := &Set{syms: make([]*Symbol, 0, len(s.syms)+len(other.syms))}
	i, j := 0, 0
	for i < len(s.syms) && j < len(other.syms) {
		a, b := s.syms[i], other.syms[j]
		switch {
		case a.order < b.order:
			out.syms = append(out.syms, a)
			i++
		case a.order > b.order:
			out.syms = append(out.syms, b)
			j++
		default:
			out.syms = append(out.syms, a)
			i++
			j++
		}
	}
	out.syms = append(out.syms, s.syms[i:]...)
	out.syms = append(out.syms, other.syms[j:]...)
	return out
}

// UnionInPlace unions other into s, returning true if s changed.
func (s *Set) UnionInPlace(other *Set) bool {
	changed := false
	for _, sym := range other.syms {
		if s.Insert(sym) {
			changed = true
		}
	}
	return changed
}

// Intersect returns the symbols present in both sets, via linear merge.
func (s *Set) Intersect(other *Set) *Set {
	out := &Set{}
	i, j := 0, 0
	for i < len(s.syms) && j < len(other.syms) {
		a, b := s.syms[i], other.syms[j]
		switch {
		case a.order < b.order:
			i++
		case a.order > b.order:
			j++
		default:
			out.syms = append(out.syms, a)
			i++
			j++
		}
	}
	return out
}

// Overlaps reports whether s and other share at least one element, without
// allocating the full intersection.
func (s *Set) Overlaps(other *Set) bool {
	i, j := 0, 0
	for i < len(s.syms) && j < len(other.syms) {
		a, b := s.syms[i], other.syms[j]
		switch {
		case a.order < b.order:
			i++
		case a.order > b.order:
			j++
		default:
			return true
		}
	}
	return false
}

// Equal is element-wise equality of the two sorted vectors.
func (s *Set) Equal(other *Set) bool {
	if len(s.syms) != len(other.syms) {
		return false
	}
	for i := range s.syms {
		if s.syms[i] != other.syms[i] {
			return false
		}
	}
	return true
}
