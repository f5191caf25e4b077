package kernel

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// blockingSocket's Send blocks until release is closed, standing in for a
// socket that isn't writable — the scenario OutQueue's capacity bound
// exists to survive.
type blockingSocket struct {
	release chan struct{}
	mu      sync.Mutex
	sent    int
}

func newBlockingSocket() *blockingSocket {
	return &blockingSocket{release: make(chan struct{})}
}

func (b *blockingSocket) Remote() string { return "blocked" }
func (b *blockingSocket) Send(data []byte) error {
	<-b.release
	b.mu.Lock()
	b.sent++
	b.mu.Unlock()
	return nil
}
func (b *blockingSocket) Close() error { return nil }

func TestOutQueueBackpressure(t *testing.T) {
	sock := newBlockingSocket()
	var lastErr error
	q := NewOutQueue(sock, func(err error) { lastErr = err })
	defer close(sock.release)

	ok := q.Enqueue(NewBuffer([]byte("x")))
	// Let the writer goroutine take the first buffer and block in Send, so
	// exactly one buffer is in flight before the queue is filled.
	waitFor(func() bool { return len(q.ch) == 0 })
	for i := 1; i < outQueueCapacity+1 && ok; i++ {
		ok = q.Enqueue(NewBuffer([]byte("x")))
	}
	assert.True(t, ok, "capacity+1 enqueues should all succeed: one in flight, capacity queued")

	full := q.Enqueue(NewBuffer([]byte("overflow")))
	assert.False(t, full, "the next enqueue should report backpressure")
	_ = lastErr
}

func TestOutQueueReleasesOnOverflow(t *testing.T) {
	sock := newBlockingSocket()
	defer close(sock.release)
	q := NewOutQueue(sock, nil)

	for i := 0; i < outQueueCapacity+1; i++ {
		q.Enqueue(NewBuffer([]byte("x")))
	}

	released := false
	overflow := &Buffer{data: []byte("y"), released: func() { released = true }}
	q.Enqueue(overflow)
	assert.True(t, released, "a buffer dropped for backpressure must still release its reference")
}
