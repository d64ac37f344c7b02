package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInputEqualityIgnoresPayload(t *testing.T) {
	a := New("a", SkinStandard)
	coded := New("a", SkinStandard).WithCode(1).Continuous()
	other := New("a", PhysicalStandard)

	assert.True(t, a.Equal(coded))
	assert.False(t, a.Equal(other))
	assert.Equal(t, a.Key(), coded.Key())

	code, ok := coded.Code()
	assert.True(t, ok)
	assert.Equal(t, 1, code)
	_, ok = a.Code()
	assert.False(t, ok, "WithCode must not mutate the receiver")
}

func TestSetAlgebra(t *testing.T) {
	a := New("a", SkinStandard)
	b := New("b", SkinStandard)
	c := New("c", SkinStandard)

	s := NewSet(a, b)
	u := s.Union(NewSet(c))
	assert.Len(t, s, 2, "Union must not mutate the receiver")
	assert.Equal(t, []string{"a", "b", "c"}, u.Names())

	d := u.Subtract(NewSet(b))
	assert.Equal(t, []string{"a", "c"}, d.Names())
	assert.True(t, d.Equal(NewSet(c, a)))
	assert.False(t, d.Equal(NewSet(a)))
}

func TestReservedTokens(t *testing.T) {
	assert.True(t, New("menu", SkinStandard).IsMenu())
	assert.True(t, New("touchScreenX", SkinTouchAxis).IsTouchAxis())
	assert.True(t, New("TouchScreenY", SkinTouchAxis).IsTouchAxis())
	assert.False(t, New("a", SkinStandard).IsTouchAxis())

	m, ok := NewSet(New("a", SkinStandard), New("menu", SkinStandard)).Menu()
	assert.True(t, ok)
	assert.Equal(t, "menu", m.Name())
}

func TestParseNamespace(t *testing.T) {
	for ns := SkinStandard; ns <= Core; ns++ {
		parsed, ok := ParseNamespace(ns.String())
		assert.True(t, ok, ns.String())
		assert.Equal(t, ns, parsed)
	}
	_, ok := ParseNamespace("bogus")
	assert.False(t, ok)
}
