package kernel

import "fmt"

// acceptRemoteServer checks an offered SERVER name/secret pair: the
// offered (name, pass) must match some configured remote-server record.
// The secret comparison happens against the bcrypt digest so the loser of
// a name/secret mismatch can't be told which field was wrong.
func (k *Kernel) acceptRemoteServer(name, pass string) *RemoteServer {
	for _, r := range k.remoteServers {
		if r.Name != name {
			continue
		}
		if bcryptCompare(r.SecretHash(), pass) {
			return r
		}
		return nil
	}
	return nil
}

// sbcast sends msg to every local, registered peer.
func (k *Kernel) sbcast(msg string) {
	buf := NewBuffer([]byte(msg))
	k.servers.Each(func(idx int, peer *PeerServer) {
		if peer.IsLocal && peer.Registered() {
			if !k.enqueuePeer(peer, buf) {
				k.dropPeer(peer, newErr(ErrKindTransport, "peer", fmt.Errorf("send queue full")))
			}
		}
	})
}

// sbcastButOne sends msg to every local,
// registered peer except origin — the link the message arrived on.
// Origin exclusion happens before the first byte is enqueued to any peer:
// origin is checked before enqueuing, not after.
func (k *Kernel) sbcastButOne(origin int, msg string) {
	buf := NewBuffer([]byte(msg))
	k.servers.Each(func(idx int, peer *PeerServer) {
		if idx == origin {
			return
		}
		if peer.IsLocal && peer.Registered() {
			if !k.enqueuePeer(peer, buf) {
				k.dropPeer(peer, newErr(ErrKindTransport, "peer", fmt.Errorf("send queue full")))
			}
		}
	})
}

// killRemoteClientsOn iterates every client, killing (propagate=false, the
// peer is already gone) each whose owning server is sindex. Clients are
// killed before the server entity is freed so the quit broadcast can still
// resolve the owning server's metadata.
func (k *Kernel) killRemoteClientsOn(sindex int, reason string) {
	var victims []*Client
	k.clients.Each(func(idx int, c *Client) {
		if c.alive && c.ServerID == sindex {
			victims = append(victims, c)
		}
	})
	for _, c := range victims {
		k.killClient(c, reason, false)
	}
}

// killClient implements QUIT/KILL semantics shared by client QUIT,
// nick-collision kills, relayed QUITs, and netsplits: broadcast the quit to co-channel
// members (but not to the victim, who is already gone or about to be) and
// free the entity. propagate controls whether the quit is also relayed to
// peers — false when the owning peer link itself just died, since there is
// nowhere left to propagate to.
func (k *Kernel) killClient(c *Client, reason string, propagate bool) {
	if !c.alive {
		return
	}
	line := fmt.Sprintf(":%s QUIT :%s\r\n", c.Nick, reason)
	k.bcast.UserBcastButOneRaw(c, []byte(line))
	if propagate {
		k.sbcast(fmt.Sprintf("%c QUIT %s :%s\r\n", c.ServerToken, c.Nick, reason))
	}
	k.freeClient(c)
}

// dropPeer transitions a peer to CLOSED: kills every client whose owning
// server is this peer (netsplit), then frees
// the table slot. Clients are killed before the server entity is freed.
func (k *Kernel) dropPeer(peer *PeerServer, err *KernelError) {
	if peer == nil || peer.State == PeerClosed {
		return
	}
	if err != nil {
		k.log.Printf("dropping peer %s (session %s): %v", peer.Name, peer.sessionID, err)
	}
	peer.State = PeerClosed
	if peer.sock != nil {
		peer.sock.Close()
	}
	if peer.queue != nil {
		peer.queue.Close()
	}
	k.killRemoteClientsOn(peer.handle, "netsplit")

	if peer.Name != "" {
		k.servIndex.Remove(peer.Name)
	}
	if owner, ok := k.tokenIndex[peer.Token]; ok && owner == peer.handle {
		delete(k.tokenIndex, peer.Token)
	}
	k.servers.Free(peer.handle)
}

func (k *Kernel) doPeerClosed(idx int, err error) {
	if !k.servers.IsLive(idx) {
		return
	}
	var ke *KernelError
	if err != nil {
		ke = newErr(ErrKindTransport, "peer", err)
	}
	k.dropPeer(k.servers.Get(idx), ke)
}

// callRemoteServers is the periodic outbound connector:
// for every configured remote peer with no existing server entity by that
// name, initiate a TCP connect. The actual dial runs on its own goroutine
// so a slow connect attempt never blocks the event loop; the result comes
// back as an event.
func (k *Kernel) callRemoteServers() {
	for _, remote := range k.remoteServers {
		if k.servIndex.Find(remote.Name) != NoIndex {
			continue
		}
		if k.dial == nil {
			continue
		}
		remote := remote
		go func() {
			sock, err := k.dial(remote.Address, remote.Port)
			if err != nil {
				k.events <- outboundFailedEv{remote: remote, err: err}
				return
			}
			k.events <- outboundConnectedEv{remote: remote, sock: sock}
		}()
	}
}

func (k *Kernel) doOutboundConnected(e outboundConnectedEv) {
	idx, peer, err := k.servers.Create(func(i int) *PeerServer {
		return newPeerServer(i, e.remote.Name)
	})
	if err != nil {
		k.log.Printf("refusing outbound peer %s: table full", e.remote.Name)
		e.sock.Close()
		return
	}
	peer.sock = e.sock
	peer.IsLocal = true
	peer.State = PeerUnregistered
	peer.remote = e.remote
	peer.sessionID = newSessionID()
	peer.queue = NewOutQueue(e.sock, func(err error) {
		k.PeerClosed(idx, err)
	})
	k.servIndex.Put(e.remote.Name, idx)

	// We initiated this link: send our own PASS/SERVER immediately rather
	// than waiting for the peer to speak first.
	k.sendPeerLine(peer, fmt.Sprintf("PASS :%s\r\n", e.remote.SecretRaw))
	k.sendPeerLine(peer, fmt.Sprintf("SERVER %s 1 :%s\r\n", k.ServerName, k.NetworkName))
	peer.handshakeSent = true
}
