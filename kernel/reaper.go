package kernel

import (
	"fmt"
	"time"
)

// runReaper implements the idle sweep: refresh the cheap clock,
// then for every local client and peer link, PING once past idleThreshold
// and drop it if it is still silent on the next sweep after that PING.
// Runs on the event-loop goroutine like everything else here, so a sweep
// never races a concurrent table mutation.
func (k *Kernel) runReaper() {
	now := k.refreshCheapNow()

	var stale []*Client
	k.clients.Each(func(idx int, c *Client) {
		if !c.alive || !c.Local {
			return
		}
		k.sweepClient(c, now, &stale)
	})
	for _, c := range stale {
		k.dropClient(c, newErr(ErrKindTimeout, "client", fmt.Errorf("ping timeout")))
	}

	var deadPeers []*PeerServer
	k.servers.Each(func(idx int, p *PeerServer) {
		if !p.IsLocal || p.State == PeerClosed {
			return
		}
		k.sweepPeer(p, now, &deadPeers)
	})
	for _, p := range deadPeers {
		k.dropPeer(p, newErr(ErrKindTimeout, "peer", fmt.Errorf("ping timeout")))
	}
}

func (k *Kernel) sweepClient(c *Client, now int64, stale *[]*Client) {
	idle := now - c.lastActivity.Unix()
	if idle < int64(k.idleThreshold.Seconds()) {
		return
	}
	if c.pinged {
		*stale = append(*stale, c)
		return
	}
	c.pinged = true
	k.sendClientLine(c, fmt.Sprintf(":%s PING :%s\r\n", k.ServerName, k.ServerName))
}

func (k *Kernel) sweepPeer(p *PeerServer, now int64, dead *[]*PeerServer) {
	idle := now - p.lastActivity.Unix()
	if idle < int64(k.idleThreshold.Seconds()) {
		return
	}
	if p.pinged {
		*dead = append(*dead, p)
		return
	}
	p.pinged = true
	k.sendPeerLine(p, fmt.Sprintf("%c PING :%s\r\n", k.SelfToken, k.ServerName))
}

func (k *Kernel) refreshCheapNow() int64 {
	now := time.Now().Unix()
	k.cheapNow.Store(now)
	return now
}
