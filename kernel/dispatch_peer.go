package kernel

import (
	"fmt"
	"strconv"
	"time"

	"github.com/presbrey/ircd/wire"
)

// peer lines prefix the real verb with a one-character routing token
// rather than a ":nick!user@host"-style prefix — lines read "<token> S ..."
// with no leading colon. Tokens are assigned as ASCII digits by convention,
// which is what lets splitPeerLine tell a prefixed line from an unprefixed
// one (PASS, SERVER, EB, C) without ambiguity against the letter verbs
// S/N/B/C.
func splitPeerLine(msg wire.Message) (token byte, verb string, params []string) {
	if len(msg.Verb) == 1 && msg.Verb[0] >= '0' && msg.Verb[0] <= '9' && len(msg.Params) > 0 {
		return msg.Verb[0], msg.Params[0], msg.Params[1:]
	}
	return 0, msg.Verb, msg.Params
}

// dispatchPeerLine implements the peer-link state machine: PASS/SERVER
// handshake while UNREGISTERED, then the netburst verbs and steady-state
// relay once REGISTERED.
func (k *Kernel) dispatchPeerLine(idx int, msg wire.Message) {
	if !k.servers.IsLive(idx) {
		return
	}
	peer := k.servers.Get(idx)
	peer.touch(time.Now())

	if peer.State == PeerUnregistered {
		k.dispatchHandshake(peer, msg)
		return
	}
	if peer.State != PeerRegistered {
		return
	}

	token, verb, params := splitPeerLine(msg)
	switch verb {
	case "S":
		k.handleIncomingS(peer, params)
	case "N":
		k.handleIncomingN(peer, token, params)
	case "B":
		k.handleIncomingB(params)
	case "C":
		k.handleIncomingC(params)
	case "EB":
		peer.incomingBurstDone = true
	case "QUIT":
		k.relayQuit(peer, params)
		k.sbcastButOne(peer.handle, wire.Format(msg)+"\r\n")
	case "NICK":
		k.relayNick(params)
		k.sbcastButOne(peer.handle, wire.Format(msg)+"\r\n")
	default:
		k.sbcastButOne(peer.handle, wire.Format(msg)+"\r\n")
	}
}

// dispatchHandshake implements the PASS/SERVER handshake: PASS
// arrives first and is stashed, SERVER carries the offered name and
// triggers the secret check. Anything else, or a failed check, drops the
// link — there is no retry at this layer.
func (k *Kernel) dispatchHandshake(peer *PeerServer, msg wire.Message) {
	switch msg.Verb {
	case "PASS":
		peer.offeredPass = msg.Trailing()
	case "SERVER":
		if len(msg.Params) == 0 {
			k.dropPeer(peer, newErr(ErrKindProtocol, "peer", fmt.Errorf("SERVER with no name")))
			return
		}
		name := msg.Params[0]
		record := k.acceptRemoteServer(name, peer.offeredPass)
		if record == nil {
			k.dropPeer(peer, newErr(ErrKindAuth, "peer", fmt.Errorf("SERVER %s: bad name or secret", name)))
			return
		}
		peer.Name = name
		peer.remote = record
		peer.State = PeerRegistered
		peer.LinkTS = k.CheapNow()
		k.servIndex.Put(name, peer.handle)
		// If this link was offered to us rather than initiated by us, the
		// other side is still waiting on our half of the handshake before
		// it can leave PeerUnregistered itself.
		if !peer.handshakeSent {
			k.sendPeerLine(peer, fmt.Sprintf("PASS :%s\r\n", record.SecretRaw))
			k.sendPeerLine(peer, fmt.Sprintf("SERVER %s 1 :%s\r\n", k.ServerName, k.NetworkName))
			peer.handshakeSent = true
		}
		k.beginNetburst(peer)
	default:
		k.dropPeer(peer, newErr(ErrKindProtocol, "peer", fmt.Errorf("%s before registration", msg.Verb)))
	}
}

// handleIncomingS learns of a server, either folding a self-announcement
// from the directly-linked peer into its existing entity (created at
// accept or connect time and registered at SERVER time, before its own
// token was known) or creating
// a new, transitively-known PeerServer entity one hop further out than
// the peer that told us about it.
func (k *Kernel) handleIncomingS(peer *PeerServer, params []string) {
	if len(params) < 7 {
		return
	}
	name := params[0]
	hops, _ := strconv.Atoi(params[1])
	bootTS, _ := strconv.ParseInt(params[2], 10, 64)
	linkTS, _ := strconv.ParseInt(params[3], 10, 64)
	// params[4] is the "J10" protocol tag, unused.
	var token byte
	if len(params[5]) > 0 {
		token = params[5][0]
	}
	desc := params[6]

	if name == peer.Name {
		peer.Token = token
		peer.Hops = 1
		peer.BootTS = time.Unix(bootTS, 0)
		peer.LinkTS = time.Unix(linkTS, 0)
		peer.Desc = desc
		k.tokenIndex[token] = peer.handle
		return
	}
	if k.servIndex.Find(name) != NoIndex {
		return
	}
	_, srv, err := k.servers.Create(func(i int) *PeerServer {
		return newPeerServer(i, name)
	})
	if err != nil {
		return
	}
	srv.Token = token
	srv.Hops = hops + 1
	srv.BootTS = time.Unix(bootTS, 0)
	srv.LinkTS = time.Unix(linkTS, 0)
	srv.Desc = desc
	srv.IsLocal = false
	srv.State = PeerRegistered
	k.servIndex.Put(name, srv.handle)
	k.tokenIndex[token] = srv.handle
}

// handleIncomingN introduces a remote client, applying the nickname
// collision TS rule: the older NickTS wins; the younger is killed, and
// propagated if it was ours to kill.
//
// The burst line's fourth field carries the client's actual NickTS (Unix
// seconds) on both the sending and receiving side, since a fixed
// placeholder there would leave no real timestamp to compare when two
// servers introduce the same nick independently, and the collision rule
// would never have anything to decide.
func (k *Kernel) handleIncomingN(peer *PeerServer, token byte, params []string) {
	if len(params) < 8 {
		return
	}
	nick := params[0]
	ts, _ := strconv.ParseInt(params[2], 10, 64)
	user, host, modes, ip := params[3], params[4], params[5], params[6]
	var clientToken byte
	if len(params[7]) > 0 {
		clientToken = params[7][0]
	}
	real := ""
	if len(params) > 8 {
		real = params[8]
	}

	if existingIdx := k.nickIndex.Find(nick); existingIdx != NoIndex {
		existing := k.clients.Get(existingIdx)
		if ts < existing.NickTS {
			k.killClient(existing, "Nickname collision", true)
		} else {
			k.sendPeerLine(peer, fmt.Sprintf("%c KILL %s :Nickname collision\r\n", k.SelfToken, nick))
			return
		}
	}

	ownerIdx := peer.handle
	if si, ok := k.tokenIndex[clientToken]; ok {
		ownerIdx = si
	}

	idx, c, err := k.clients.Create(func(i int) *Client {
		return newClient(i, nil)
	})
	if err != nil {
		return
	}
	c.Local = false
	c.Nick = nick
	c.User = user
	c.Host = host
	c.Modes = modes
	c.IP = ip
	c.Real = real
	c.NickTS = ts
	c.ServerID = ownerIdx
	c.ServerToken = clientToken
	c.Registered = true
	k.nickIndex.Put(nick, idx)
	k.Counters.addRemoteUser(1)
}

// handleIncomingB learns of a channel with a topic set. The topic text
// itself is not part of the wire line (the B line carries only
// name/created_ts/modes), so HasTopic is recorded without any content.
func (k *Kernel) handleIncomingB(params []string) {
	if len(params) < 3 {
		return
	}
	name := params[0]
	createdTS, _ := strconv.ParseInt(params[1], 10, 64)
	modes := params[2]
	if k.chanIndex.Find(chanKey(name)) != NoIndex {
		return
	}
	_, ch, err := k.channels.Create(func(i int) *Channel {
		return newChannel(i, name, time.Unix(createdTS, 0))
	})
	if err != nil {
		return
	}
	ch.Modes = modes
	ch.HasTopic = true
	k.chanIndex.Put(chanKey(name), ch.handle)
	k.Counters.incChans()
}

// handleIncomingC learns of a channel with no topic set: "C <name>
// <modes> <created_ts>", unprefixed unlike S/N/B.
func (k *Kernel) handleIncomingC(params []string) {
	if len(params) < 3 {
		return
	}
	name, modes := params[0], params[1]
	createdTS, _ := strconv.ParseInt(params[2], 10, 64)
	if k.chanIndex.Find(chanKey(name)) != NoIndex {
		return
	}
	_, ch, err := k.channels.Create(func(i int) *Channel {
		return newChannel(i, name, time.Unix(createdTS, 0))
	})
	if err != nil {
		return
	}
	ch.Modes = modes
	k.chanIndex.Put(chanKey(name), ch.handle)
	k.Counters.incChans()
}

// relayQuit applies a remote QUIT to our view of that client before the
// line is flooded onward.
func (k *Kernel) relayQuit(peer *PeerServer, params []string) {
	if len(params) < 1 {
		return
	}
	idx := k.nickIndex.Find(params[0])
	if idx == NoIndex {
		return
	}
	reason := "Quit"
	if len(params) > 1 {
		reason = params[1]
	}
	k.killClient(k.clients.Get(idx), reason, false)
}

// relayNick applies a remote nickname change locally before the line is
// flooded onward. The third field carries the NickTS the originating
// server stamped the rename with; we apply that value rather than our own
// clock so every server in the mesh agrees on when the nick was claimed,
// which is what the collision TS rule in handleIncomingN compares against.
func (k *Kernel) relayNick(params []string) {
	if len(params) < 2 {
		return
	}
	old, newNick := params[0], params[1]
	idx := k.nickIndex.Find(old)
	if idx == NoIndex {
		return
	}
	c := k.clients.Get(idx)
	ts := k.CheapNow().Unix()
	if len(params) > 2 {
		if parsed, err := strconv.ParseInt(params[2], 10, 64); err == nil {
			ts = parsed
		}
	}
	k.bcast.UserBcastRaw(c, []byte(fmt.Sprintf(":%s NICK :%s\r\n", old, newNick)))
	k.nickIndex.Remove(old)
	c.Nick = newNick
	c.NickTS = ts
	k.nickIndex.Put(newNick, idx)
}
