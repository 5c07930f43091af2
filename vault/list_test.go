package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marked(b byte) *Entry {
	e := &Entry{}
	e.Hash[0] = b
	return e
}

func TestListPositionsAreOneBased(t *testing.T) {
	l := NewList()
	assert.Nil(t, l.At(1))
	assert.False(t, l.Valid(0))

	l.Append(marked(1))
	l.Append(marked(2))

	assert.Equal(t, 2, l.Len())
	assert.Nil(t, l.At(0))
	assert.Equal(t, byte(1), l.At(1).Hash[0])
	assert.Equal(t, byte(2), l.At(2).Hash[0])
	assert.Nil(t, l.At(3))
}

func TestListRemoveRenumbers(t *testing.T) {
	l := NewList()
	for i := byte(1); i <= 5; i++ {
		l.Append(marked(i))
	}

	require.True(t, l.Remove(2))
	assert.Equal(t, 4, l.Len())
	var got []byte
	l.Each(func(n int, e *Entry) bool {
		got = append(got, e.Hash[0])
		return true
	})
	assert.Equal(t, []byte{1, 3, 4, 5}, got)
	assert.Equal(t, byte(3), l.At(2).Hash[0])

	assert.False(t, l.Remove(5))
	assert.False(t, l.Remove(0))
	require.True(t, l.Remove(4))
	assert.Equal(t, byte(4), l.At(3).Hash[0])
}

func TestListReplace(t *testing.T) {
	l := NewList()
	l.Append(marked(1))
	assert.True(t, l.Replace(1, marked(9)))
	assert.Equal(t, byte(9), l.At(1).Hash[0])
	assert.False(t, l.Replace(2, marked(7)))
}

func TestListEachStops(t *testing.T) {
	l := NewList()
	for i := byte(1); i <= 3; i++ {
		l.Append(marked(i))
	}
	var seen []int
	l.Each(func(n int, _ *Entry) bool {
		seen = append(seen, n)
		return n < 2
	})
	assert.Equal(t, []int{1, 2}, seen)
}

func TestListClearWipesEntries(t *testing.T) {
	l := NewList()
	e := marked(7)
	l.Append(e)
	l.Clear()
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, Entry{}, *e)
}
