package kernel

import (
	"fmt"
	"strings"
	"time"

	"github.com/presbrey/ircd/wire"
)

// dispatchClientLine reacts to the minimal verb set the kernel itself must
// understand to keep its invariants correct. Everything else is an
// out-of-scope command dispatcher's job; a real deployment wires a fuller
// command table in front of this and only falls through to the kernel for
// the verbs below.
func (k *Kernel) dispatchClientLine(idx int, msg wire.Message) {
	if !k.clients.IsLive(idx) {
		return
	}
	client := k.clients.Get(idx)
	client.touch(time.Now())

	switch msg.Verb {
	case "NICK":
		k.handleNick(client, msg)
	case "USER":
		k.handleUser(client, msg)
	case "JOIN":
		k.handleJoin(client, msg)
	case "PART":
		k.handlePart(client, msg)
	case "PRIVMSG", "NOTICE":
		k.handlePrivmsg(client, msg)
	case "QUIT":
		reason := "Quit"
		if t := msg.Trailing(); t != "" {
			reason = t
		}
		k.killClient(client, reason, true)
	case "PING":
		k.sendClientLine(client, fmt.Sprintf(":%s PONG %s\r\n", k.ServerName, msg.Trailing()))
	case "PONG":
		// touch() above already cleared pinged.
	default:
		k.sendClientLine(client, fmt.Sprintf(":%s 421 %s %s :Unknown command\r\n", k.ServerName, client.Nick, msg.Verb))
	}
}

func (k *Kernel) handleNick(c *Client, msg wire.Message) {
	if len(msg.Params) == 0 || msg.Params[0] == "" {
		k.sendClientLine(c, fmt.Sprintf(":%s %03d :No nickname given\r\n", k.ServerName, errNoNicknameGiven))
		return
	}
	nick := msg.Params[0]
	if existing := k.nickIndex.Find(nick); existing != NoIndex && existing != c.handle {
		k.sendClientLine(c, fmt.Sprintf(":%s %03d * %s :Nickname is already in use\r\n", k.ServerName, errNicknameInUse, nick))
		return
	}

	if c.Registered {
		old := c.Nick
		c.Nick = nick
		c.NickTS = k.CheapNow().Unix()
		k.nickIndex.Remove(old)
		k.nickIndex.Put(nick, c.handle)
		k.bcast.UserBcastRaw(c, []byte(fmt.Sprintf(":%s NICK :%s\r\n", old, nick)))
		k.sbcast(fmt.Sprintf("%c NICK %s %s %d\r\n", c.ServerToken, old, nick, c.NickTS))
		return
	}

	if c.Nick != "" {
		k.nickIndex.Remove(c.Nick)
	}
	c.Nick = nick
	k.nickIndex.Put(nick, c.handle)
	k.maybeRegister(c)
}

func (k *Kernel) handleUser(c *Client, msg wire.Message) {
	if len(msg.Params) < 4 {
		k.sendClientLine(c, fmt.Sprintf(":%s %03d USER :Not enough parameters\r\n", k.ServerName, errNeedMoreParams))
		return
	}
	c.User = msg.Params[0]
	c.Real = msg.Trailing()
	k.maybeRegister(c)
}

func (k *Kernel) maybeRegister(c *Client) {
	if c.Registered || c.Nick == "" || c.User == "" {
		return
	}
	k.newRegisteredClient(c)
	k.sendClientLine(c, fmt.Sprintf(":%s %03d %s :Welcome to %s, %s\r\n", k.ServerName, rplWelcome, c.Nick, k.NetworkName, c.Nick))
}

func (k *Kernel) handleJoin(c *Client, msg wire.Message) {
	if !c.Registered {
		k.sendClientLine(c, fmt.Sprintf(":%s %03d :You have not registered\r\n", k.ServerName, errNotRegistered))
		return
	}
	if len(msg.Params) == 0 {
		k.sendClientLine(c, fmt.Sprintf(":%s %03d JOIN :Not enough parameters\r\n", k.ServerName, errNeedMoreParams))
		return
	}
	for _, name := range strings.Split(msg.Params[0], ",") {
		if name == "" {
			continue
		}
		channel := k.joinChannel(c, name)
		k.bcast.ChannelBcastRaw(channel, c, []byte(fmt.Sprintf(":%s!%s@%s JOIN :%s\r\n", c.Nick, c.User, c.Host, name)))
	}
}

func (k *Kernel) handlePart(c *Client, msg wire.Message) {
	if len(msg.Params) == 0 {
		k.sendClientLine(c, fmt.Sprintf(":%s %03d PART :Not enough parameters\r\n", k.ServerName, errNeedMoreParams))
		return
	}
	for _, name := range strings.Split(msg.Params[0], ",") {
		chidx := k.chanIndex.Find(chanKey(name))
		if chidx == NoIndex {
			k.sendClientLine(c, fmt.Sprintf(":%s %03d %s :No such channel\r\n", k.ServerName, errNoSuchChannel, name))
			continue
		}
		channel := k.channels.Get(chidx)
		reason := msg.Trailing()
		line := fmt.Sprintf(":%s!%s@%s PART %s", c.Nick, c.User, c.Host, name)
		if reason != "" {
			line += " :" + reason
		}
		k.bcast.ChannelBcastRaw(channel, c, []byte(line+"\r\n"))
		k.partChannel(c, channel)
	}
}

// handlePrivmsg delivers to the named target only: every other member of
// the target channel for a channel message, or the one named client for a
// private message. ChannelBcastButOneRaw is scoped to the target channel's
// own membership, not the sender's other channels.
func (k *Kernel) handlePrivmsg(c *Client, msg wire.Message) {
	if len(msg.Params) < 2 {
		k.sendClientLine(c, fmt.Sprintf(":%s %03d PRIVMSG :Not enough parameters\r\n", k.ServerName, errNeedMoreParams))
		return
	}
	target := msg.Params[0]
	text := msg.Trailing()

	if strings.HasPrefix(target, "#") {
		chidx := k.chanIndex.Find(chanKey(target))
		if chidx == NoIndex {
			k.sendClientLine(c, fmt.Sprintf(":%s %03d %s :No such channel\r\n", k.ServerName, errNoSuchChannel, target))
			return
		}
		channel := k.channels.Get(chidx)
		if _, member := channel.members[c.handle]; !member {
			k.sendClientLine(c, fmt.Sprintf(":%s %03d %s :Cannot send to channel\r\n", k.ServerName, errNoSuchChannel, target))
			return
		}
		line := fmt.Sprintf(":%s!%s@%s %s %s :%s\r\n", c.Nick, c.User, c.Host, msg.Verb, target, text)
		k.bcast.ChannelBcastButOneRaw(channel, c, []byte(line))
		return
	}

	destIdx := k.nickIndex.Find(target)
	if destIdx == NoIndex {
		k.sendClientLine(c, fmt.Sprintf(":%s %03d %s :No such nick\r\n", k.ServerName, errNoSuchNick, target))
		return
	}
	dest := k.clients.Get(destIdx)
	line := fmt.Sprintf(":%s!%s@%s %s %s :%s\r\n", c.Nick, c.User, c.Host, msg.Verb, target, text)
	k.sendClientLine(dest, line)
}
