package kernel

import "sync/atomic"

// Buffer is the zero-copy broadcast payload: formatted once, referenced
// by every destination's send queue, released when the last reference
// drops. It is immutable after construction.
type Buffer struct {
	data []byte
	refs atomic.Int32

	// released, if set, fires the instant the refcount drops to zero. Tests
	// use it to verify the "released when last reference drops" law; the
	// writer goroutines and Free() paths use it for nothing production code
	// needs, since Go's GC already reclaims the backing array — the
	// refcount exists to make the lifetime explicit and testable.
	released func()
}

// NewBuffer wraps data in a Buffer with a refcount of zero. OutQueue.Enqueue
// retains it once per destination, so callers hand it over unretained.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Bytes returns the underlying payload. The returned slice must not be
// mutated.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Retain increments the refcount and returns b. OutQueue.Enqueue calls it
// for each destination it accepts.
func (b *Buffer) Retain() *Buffer {
	b.refs.Add(1)
	return b
}

// Release decrements the refcount. When it reaches zero the buffer is
// considered released and b.released (if set) fires exactly once.
func (b *Buffer) Release() {
	if b.refs.Add(-1) == 0 && b.released != nil {
		b.released()
	}
}

// RefCount reports the current outstanding reference count, for tests.
func (b *Buffer) RefCount() int32 {
	return b.refs.Load()
}
