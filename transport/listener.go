package transport

import (
	"fmt"
	"log"
	"net"

	"github.com/presbrey/ircd/kernel"
	"github.com/presbrey/ircd/wire"
)

// ListenClients binds addr and accepts client connections until the
// listener is closed, handing each to Kernel.AcceptClient and spawning a
// reader goroutine per connection.
func ListenClients(addr string, k *kernel.Kernel) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("transport: listen clients on %s: %w", addr, err)
	}
	go acceptLoop(ln, func(conn *Conn) {
		idx := k.AcceptClient(conn)
		if idx == kernel.NoIndex {
			return
		}
		go readLines(conn, func(msg wire.Message) { k.ClientLine(idx, msg) }, func(err error) { k.ClientClosed(idx, err) })
	})
	return nil
}

// ListenPeers binds addr and accepts inbound peer connections, handing
// each to Kernel.AcceptPeer.
func ListenPeers(addr string, k *kernel.Kernel) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("transport: listen peers on %s: %w", addr, err)
	}
	go acceptLoop(ln, func(conn *Conn) {
		idx := k.AcceptPeer(conn)
		if idx == kernel.NoIndex {
			return
		}
		go readLines(conn, func(msg wire.Message) { k.PeerLine(idx, msg) }, func(err error) { k.PeerClosed(idx, err) })
	})
	return nil
}

func acceptLoop(ln net.Listener, handle func(conn *Conn)) {
	for {
		nc, err := ln.Accept()
		if err != nil {
			log.Printf("[transport] accept on %s failed, stopping: %v", ln.Addr(), err)
			return
		}
		handle(NewConn(nc))
	}
}

// readLines is the per-connection reader goroutine: parse lines until a
// read error (EOF included), delivering each to onLine and skipping lines
// that fail to parse, then report closure.
func readLines(conn *Conn, onLine func(wire.Message), onClosed func(error)) {
	r := conn.reader()
	for {
		line, err := r.ReadString('\n')
		if len(line) > 0 {
			msg, perr := wire.Parse(line)
			if perr == nil {
				onLine(msg)
			}
		}
		if err != nil {
			onClosed(err)
			return
		}
	}
}

// Dial implements kernel.Dialer over plain TCP, for the periodic
// connector's outbound attempts.
func Dial(address string, port int) (kernel.Socket, error) {
	nc, err := net.Dial("tcp", fmt.Sprintf("%s:%d", address, port))
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s:%d: %w", address, port, err)
	}
	return NewConn(nc), nil
}
