package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetUnionIntersect(t *testing.T) {
	tab := NewTable()
	a, _ := tab.Lookup("a", Terminal, Insert)
	b, _ := tab.Lookup("b", Terminal, Insert)
	c, _ := tab.Lookup("c", Terminal, Insert)

	s1 := NewSet(a, b)
	s2 := NewSet(b, c)

	union := s1.Union(s2)
	assert.Equal(t, 3, union.Len())
	assert.True(t, union.Contains(a))
	assert.True(t, union.Contains(b))
	assert.True(t, union.Contains(c))

	inter := s1.Intersect(s2)
	assert.Equal(t, 1, inter.Len())
	assert.True(t, inter.Contains(b))
	assert.True(t, s1.Overlaps(s2))

	s3 := NewSet(a)
	assert.False(t, s3.Overlaps(NewSet(c)))
}

func TestSetInsertDeleteEqual(t *testing.T) {
	tab := NewTable()
	a, _ := tab.Lookup("a", Terminal, Insert)
	b, _ := tab.Lookup("b", Terminal, Insert)

	s := NewSet()
	assert.True(t, s.Insert(a))
	assert.False(t, s.Insert(a))
	assert.True(t, s.Insert(b))

	other := NewSet(b, a)
	assert.True(t, s.Equal(other))

	assert.True(t, s.Delete(a))
	assert.False(t, s.Equal(other))
}

func TestIntSetOps(t *testing.T) {
	s1 := NewIntSet(1, 3, 5)
	s2 := NewIntSet(3, 4, 5)

	assert.Equal(t, []int{1, 3, 4, 5}, s1.Union(s2).Slice())
	assert.Equal(t, []int{3, 5}, s1.Intersect(s2).Slice())
}
