package kernel

// Socket is the transport contract the kernel consumes: the
// part of a connection the kernel is allowed to touch directly. Accepting,
// connecting, and read-callback wiring live in the transport package and
// are never called from inside the event loop — only Remote and Close are.
// Send is called only from the writer goroutine that owns this socket's
// OutQueue, so Close must be safe to call concurrently with Send.
type Socket interface {
	// Remote returns the peer address string, for logging.
	Remote() string
	// Send writes data to the wire. Implementations may block; the kernel
	// never calls Send directly — only the per-entity OutQueue's writer
	// goroutine does.
	Send(data []byte) error
	// Close tears down the underlying connection. Idempotent.
	Close() error
}
