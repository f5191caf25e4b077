package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferRefcount(t *testing.T) {
	released := false
	buf := &Buffer{data: []byte("hello")}
	buf.released = func() { released = true }
	buf.refs.Store(1)

	assert.Equal(t, []byte("hello"), buf.Bytes())

	dup := buf.Retain()
	assert.Equal(t, int32(2), buf.RefCount())

	dup.Release()
	assert.Equal(t, int32(1), buf.RefCount())
	assert.False(t, released)

	buf.Release()
	assert.True(t, released, "released callback should fire when the last reference drops")
}

func TestNewBuffer(t *testing.T) {
	buf := NewBuffer([]byte("hi"))
	assert.Equal(t, int32(0), buf.RefCount(), "NewBuffer starts unretained; Enqueue retains per destination")
	assert.Equal(t, []byte("hi"), buf.Bytes())
}
