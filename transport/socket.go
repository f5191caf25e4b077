// Package transport implements the net-based transport layer: TCP
// listeners for clients and peers, an outbound dialer for the configured
// remote-server connector, and the per-connection reader goroutines that
// turn raw lines into kernel events.
package transport

import (
	"bufio"
	"fmt"
	"net"
	"sync"
)

// Conn adapts a net.Conn to the kernel.Socket contract. Writes are
// serialized with a mutex because the kernel's OutQueue writer goroutine
// (Send) and the kernel's event loop dropping the entity (Close) can reach
// this connection concurrently.
type Conn struct {
	nc net.Conn

	mu     sync.Mutex
	closed bool
}

// NewConn wraps an already-accepted or already-dialed net.Conn.
func NewConn(nc net.Conn) *Conn {
	return &Conn{nc: nc}
}

func (c *Conn) Remote() string {
	return c.nc.RemoteAddr().String()
}

func (c *Conn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("transport: send on closed connection")
	}
	_, err := c.nc.Write(data)
	return err
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.nc.Close()
}

// reader returns a bufio.Reader over the wrapped connection for the
// accept loop's line-reading goroutine.
func (c *Conn) reader() *bufio.Reader {
	return bufio.NewReader(c.nc)
}
