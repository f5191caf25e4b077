package kernel

import "fmt"

// beginNetburst implements the netburst: once a peer link reaches
// REGISTERED, send it our entire view of the network in a fixed order —
// servers (including self), then clients, then channels, then the
// terminator — so the peer's own tables come up consistent with ours
// before any steady-state traffic starts flowing.
//
// Every line here is sent through the peer's OutQueue, which is a plain
// FIFO channel with one writer goroutine per link, so burst lines leave in
// the order they are sent. The queue is bounded by outQueueCapacity: if a
// burst finds it full, sendPeerLine drops the whole peer link rather than
// buffering further or skipping a line.
//
// Deliberately not reproduced: the original's latent bug of bounding the
// client loop by the channel count and the channel loop by the client
// count. Here the client loop runs clients.Size() times and the channel
// loop runs channels.Size() times.
func (k *Kernel) beginNetburst(peer *PeerServer) {
	k.servers.Each(func(idx int, srv *PeerServer) {
		k.sendPeerLine(peer, fmt.Sprintf("%c S %s %d %d %d J10 %c :%s\r\n",
			k.SelfToken, srv.Name, srv.Hops, srv.BootTS.Unix(), srv.LinkTS.Unix(), srv.Token, srv.Desc))
	})

	k.clients.Each(func(idx int, c *Client) {
		if !c.Registered {
			return
		}
		owner := k.SelfToken
		if live := k.servers.IsLive(c.ServerID); live {
			owner = k.servers.Get(c.ServerID).Token
		}
		k.sendPeerLine(peer, fmt.Sprintf("%c N %s %d %d %s %s %s %s %c :%s\r\n",
			owner, c.Nick, k.hopsFor(c.ServerID), c.NickTS, c.User, c.Host, c.Modes, c.IP, c.ServerToken, c.Real))
	})

	k.channels.Each(func(idx int, ch *Channel) {
		if ch.HasTopic {
			k.sendPeerLine(peer, fmt.Sprintf("%c B %s %d %s\r\n", k.SelfToken, ch.Name, ch.Created.Unix(), ch.Modes))
		} else {
			k.sendPeerLine(peer, fmt.Sprintf("C %s %s %d\r\n", ch.Name, ch.Modes, ch.Created.Unix()))
		}
	})

	k.sendPeerLine(peer, "EB\r\n")
	peer.burstSent = true
}

func (k *Kernel) hopsFor(serverID int) int {
	if !k.servers.IsLive(serverID) {
		return 1
	}
	return k.servers.Get(serverID).Hops
}
