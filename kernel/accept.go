package kernel

import (
	"fmt"

	"github.com/presbrey/ircd/wire"
)

// AcceptClient registers a newly accepted client socket and returns its
// clindex. Safe to call from any goroutine — the transport listener's
// accept loop calls this directly; the table mutation itself happens on
// the event-loop goroutine via the acceptClientEv round trip.
func (k *Kernel) AcceptClient(sock Socket) int {
	resp := make(chan int, 1)
	k.events <- acceptClientEv{sock: sock, resp: resp}
	return <-resp
}

// AcceptPeer registers a newly accepted (inbound) peer socket and returns
// its sindex, in the UNREGISTERED state awaiting PASS/SERVER.
func (k *Kernel) AcceptPeer(sock Socket) int {
	resp := make(chan int, 1)
	k.events <- acceptPeerEv{sock: sock, resp: resp}
	return <-resp
}

// ClientLine delivers one parsed client command to the kernel. Called by
// the transport package's per-connection reader goroutine.
func (k *Kernel) ClientLine(idx int, msg wire.Message) {
	k.events <- clientLineEv{idx: idx, msg: msg}
}

// PeerLine delivers one parsed peer line to the kernel.
func (k *Kernel) PeerLine(idx int, msg wire.Message) {
	k.events <- peerLineEv{idx: idx, msg: msg}
}

// ClientClosed notifies the kernel that a client's socket has closed.
func (k *Kernel) ClientClosed(idx int, err error) {
	k.events <- clientClosedEv{idx: idx, err: err}
}

// PeerClosed notifies the kernel that a peer's socket has closed.
func (k *Kernel) PeerClosed(idx int, err error) {
	k.events <- peerClosedEv{idx: idx, err: err}
}

func (k *Kernel) doAcceptClient(e acceptClientEv) {
	k.log.Printf("accept client from %s", e.sock.Remote())
	k.Counters.incConns()
	idx, client, err := k.clients.Create(func(i int) *Client {
		return newClient(i, e.sock)
	})
	if err != nil {
		k.log.Printf("refusing client from %s: %v", e.sock.Remote(), err)
		e.sock.Close()
		e.resp <- NoIndex
		return
	}
	client.IP = e.sock.Remote()
	client.ServerID = k.selfServerIdx
	client.ServerToken = k.SelfToken
	client.queue = NewOutQueue(e.sock, func(err error) {
		k.ClientClosed(idx, err)
	})
	e.resp <- idx
}

func (k *Kernel) doAcceptPeer(e acceptPeerEv) {
	k.log.Printf("accept peer from %s", e.sock.Remote())
	k.Counters.incConns()
	idx, peer, err := k.servers.Create(func(i int) *PeerServer {
		return newPeerServer(i, "")
	})
	if err != nil {
		k.log.Printf("refusing peer from %s: %v", e.sock.Remote(), err)
		e.sock.Close()
		e.resp <- NoIndex
		return
	}
	peer.sock = e.sock
	peer.IsLocal = true
	peer.State = PeerUnregistered
	peer.sessionID = newSessionID()
	peer.queue = NewOutQueue(e.sock, func(err error) {
		k.PeerClosed(idx, err)
	})
	e.resp <- idx
}

// enqueueClient writes buf to client's pending output, retaining it for
// this one destination.
func (k *Kernel) enqueueClient(client *Client, buf *Buffer) bool {
	if client == nil || !client.alive || client.queue == nil {
		return true
	}
	return client.queue.Enqueue(buf)
}

func (k *Kernel) enqueuePeer(peer *PeerServer, buf *Buffer) bool {
	if peer == nil || !peer.alive() || peer.queue == nil {
		return true
	}
	return peer.queue.Enqueue(buf)
}

func (p *PeerServer) alive() bool {
	return p.State != PeerClosed
}

// sendClientLine is a small convenience over enqueueClient for single-
// destination numeric replies.
func (k *Kernel) sendClientLine(client *Client, line string) {
	if !k.enqueueClient(client, NewBuffer([]byte(line))) {
		k.dropClient(client, newErr(ErrKindTransport, "client", fmt.Errorf("send queue full")))
	}
}

func (k *Kernel) sendPeerLine(peer *PeerServer, line string) {
	if !k.enqueuePeer(peer, NewBuffer([]byte(line))) {
		k.dropPeer(peer, newErr(ErrKindTransport, "peer", fmt.Errorf("send queue full")))
	}
}
