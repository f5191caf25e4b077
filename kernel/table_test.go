package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	handle int
	Name   string
}

func TestTableCreateAndFree(t *testing.T) {
	tbl := NewTable[widget](0)

	idx, w, err := tbl.Create(func(i int) *widget { return &widget{handle: i, Name: "a"} })
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.True(t, tbl.IsLive(idx))
	assert.Equal(t, w, tbl.Get(idx))

	tbl.Free(idx)
	assert.False(t, tbl.IsLive(idx))

	idx2, w2, err := tbl.Create(func(i int) *widget { return &widget{handle: i, Name: "b"} })
	require.NoError(t, err)
	assert.Equal(t, idx, idx2, "freed slots should be reused")
	assert.Equal(t, "b", w2.Name)
}

func TestTableCapacity(t *testing.T) {
	tbl := NewTable[widget](2)

	_, _, err := tbl.Create(func(i int) *widget { return &widget{handle: i} })
	require.NoError(t, err)
	_, _, err = tbl.Create(func(i int) *widget { return &widget{handle: i} })
	require.NoError(t, err)

	_, _, err = tbl.Create(func(i int) *widget { return &widget{handle: i} })
	assert.ErrorIs(t, err, ErrTableFull)
}

func TestTableEach(t *testing.T) {
	tbl := NewTable[widget](0)
	idxA, _, _ := tbl.Create(func(i int) *widget { return &widget{handle: i, Name: "a"} })
	_, _, _ = tbl.Create(func(i int) *widget { return &widget{handle: i, Name: "b"} })
	tbl.Free(idxA)

	var seen []string
	tbl.Each(func(idx int, w *widget) { seen = append(seen, w.Name) })
	assert.Equal(t, []string{"b"}, seen)
}

func TestNameIndex(t *testing.T) {
	ni := NewNameIndex()
	ni.Put("alice", 5)
	assert.Equal(t, 5, ni.Find("alice"))
	assert.Equal(t, NoIndex, ni.Find("bob"))

	ni.Remove("alice")
	assert.Equal(t, NoIndex, ni.Find("alice"))
}
