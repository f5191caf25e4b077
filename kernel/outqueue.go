package kernel

// outQueueCapacity bounds pending output per connection. A client slow
// enough to fill this is treated as a transport error rather than
// allowed to grow the queue without bound.
const outQueueCapacity = 256

// OutQueue is the per-entity pending-output buffer ("pending output
// buffers"). Enqueue is called from the kernel's single event-loop
// goroutine; a dedicated writer goroutine drains the queue and is the only
// thing that blocks on socket writability, one of the three suspension
// points in this design.
type OutQueue struct {
	sock    Socket
	ch      chan *Buffer
	onError func(err error)
	done    chan struct{}
}

// NewOutQueue starts the writer goroutine for sock. onError is invoked
// (from the writer goroutine) the first time Send fails; it must only post
// an event back to the kernel's event channel, never touch entity state
// directly.
func NewOutQueue(sock Socket, onError func(err error)) *OutQueue {
	q := &OutQueue{
		sock:    sock,
		ch:      make(chan *Buffer, outQueueCapacity),
		onError: onError,
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *OutQueue) run() {
	defer close(q.done)
	failed := false
	for buf := range q.ch {
		if !failed {
			if err := q.sock.Send(buf.Bytes()); err != nil {
				failed = true
				if q.onError != nil {
					q.onError(err)
				}
			}
		}
		buf.Release()
	}
}

// Enqueue retains buf and hands it to the writer goroutine. It reports
// ErrTableFull-flavored backpressure by returning false when the queue is
// already full; the kernel treats that as a transport error and drops the
// entity, since pending output is never allowed to grow without bound.
func (q *OutQueue) Enqueue(buf *Buffer) bool {
	buf.Retain()
	select {
	case q.ch <- buf:
		return true
	default:
		buf.Release()
		return false
	}
}

// Close stops accepting new sends and lets the writer goroutine drain (and
// Release) whatever is already queued.
func (q *OutQueue) Close() {
	close(q.ch)
}
