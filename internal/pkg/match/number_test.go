package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func uptr(v uint32) *uint32 {
	return &v
}

func TestNumberVal(t *testing.T) {
	m := Val(64)
	assert.True(t, m.Matches(64))
	assert.False(t, m.Matches(63))
	assert.False(t, m.Matches(0))
}

func TestNumberRange(t *testing.T) {
	for _, tc := range []struct {
		name     string
		min, max *uint32
		value    uint32
		expected bool
	}{
		{"inside", uptr(10), uptr(20), 15, true},
		{"min inclusive", uptr(10), uptr(20), 10, true},
		{"max inclusive", uptr(10), uptr(20), 20, true},
		{"below", uptr(10), uptr(20), 9, false},
		{"above", uptr(10), uptr(20), 21, false},
		{"open min", nil, uptr(20), 0, true},
		{"open max", uptr(10), nil, 4000, true},
		{"fully open", nil, nil, 127, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Range(tc.min, tc.max).Matches(tc.value))
		})
	}
}

func TestNumberList(t *testing.T) {
	m := List(Val(1), Range(uptr(10), uptr(20)), Val(64))
	assert.True(t, m.Matches(1))
	assert.True(t, m.Matches(15))
	assert.True(t, m.Matches(64))
	assert.False(t, m.Matches(2))
	assert.False(t, m.Matches(21))

	assert.False(t, List().Matches(0))
}

func TestNumberListOrderIrrelevant(t *testing.T) {
	a := List(Val(1), Val(2), Val(3))
	b := List(Val(3), Val(1), Val(2))
	for n := uint32(0); n < 5; n++ {
		assert.Equal(t, a.Matches(n), b.Matches(n), "value %d", n)
	}
}

func TestNumberOptional(t *testing.T) {
	assert.True(t, MatchesOpt(nil, 123))

	m := Val(5)
	assert.True(t, MatchesOpt(&m, 5))
	assert.False(t, MatchesOpt(&m, 6))
}
