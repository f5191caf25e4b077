package kernel

import "fmt"

// Broadcast computes destination sets and emits a single shared payload to
// each destination exactly once. It reuses a visited bitmap
// scratch buffer sized to the client table, indexed by
// clindex, instead of a map[int]struct{}.
type Broadcast struct {
	k       *Kernel
	visited []bool
}

func newBroadcast(k *Kernel) *Broadcast {
	return &Broadcast{k: k}
}

func (b *Broadcast) scratch() []bool {
	n := b.k.clients.Size()
	if len(b.visited) < n {
		grown := make([]bool, n)
		copy(grown, b.visited)
		b.visited = grown
	}
	for i := range b.visited {
		b.visited[i] = false
	}
	return b.visited
}

// destinations walks src's channels and marks every co-member (and src
// itself, unless butOne) exactly once in the scratch bitmap, then returns
// the marked handles in ascending order — a deterministic iteration order.
func (b *Broadcast) destinations(src *Client, butOne bool) []int {
	visited := b.scratch()
	if !butOne {
		visited[src.handle] = true
	}
	for ch := range src.channels {
		channel := b.k.channels.Get(ch)
		for member := range channel.members {
			visited[member] = true
		}
	}
	if butOne {
		visited[src.handle] = false
	}

	dests := make([]int, 0, len(src.channels)+1)
	for idx, v := range visited {
		if v {
			dests = append(dests, idx)
		}
	}
	return dests
}

// channelDestinations marks every member of ch in the scratch bitmap, then
// clears src if butOne; src is included only if it is itself a member.
// Unlike destinations, this is scoped to one channel rather than the union
// of every channel src is in — the right scope for anything that names a
// single target channel (PRIVMSG/NOTICE, JOIN, PART), where a message to #x
// must never reach a member of #y who shares only #y with src.
func (b *Broadcast) channelDestinations(ch *Channel, src *Client, butOne bool) []int {
	visited := b.scratch()
	for member := range ch.members {
		visited[member] = true
	}
	if butOne {
		visited[src.handle] = false
	}

	dests := make([]int, 0, len(ch.members))
	for idx, v := range visited {
		if v {
			dests = append(dests, idx)
		}
	}
	return dests
}

func (b *Broadcast) deliver(dests []int, buf *Buffer) {
	for _, idx := range dests {
		client := b.k.clients.Get(idx)
		if !b.k.enqueueClient(client, buf) {
			b.k.dropClient(client, newErr(ErrKindTransport, "client", fmt.Errorf("send queue full")))
		}
	}
}

// UserBcast sends ":<from> <NNN> <tail>\r\n" to src and to every client
// that shares a channel with src.
func (b *Broadcast) UserBcast(src *Client, from string, numeric int, tail string) {
	line := fmt.Sprintf(":%s %03d %s\r\n", from, numeric, tail)
	b.UserBcastRaw(src, []byte(line))
}

// UserBcastRaw is the raw-buffer form of UserBcast.
func (b *Broadcast) UserBcastRaw(src *Client, payload []byte) {
	dests := b.destinations(src, false)
	buf := NewBuffer(payload)
	b.deliver(dests, buf)
}

// UserBcastButOne is UserBcast excluding src itself.
func (b *Broadcast) UserBcastButOne(src *Client, from string, numeric int, tail string) {
	line := fmt.Sprintf(":%s %03d %s\r\n", from, numeric, tail)
	b.UserBcastButOneRaw(src, []byte(line))
}

// UserBcastButOneRaw is the raw-buffer form of UserBcastButOne.
func (b *Broadcast) UserBcastButOneRaw(src *Client, payload []byte) {
	dests := b.destinations(src, true)
	buf := NewBuffer(payload)
	b.deliver(dests, buf)
}

// ChannelBcastRaw sends payload to every member of ch, including src.
func (b *Broadcast) ChannelBcastRaw(ch *Channel, src *Client, payload []byte) {
	dests := b.channelDestinations(ch, src, false)
	buf := NewBuffer(payload)
	b.deliver(dests, buf)
}

// ChannelBcastButOneRaw sends payload to every member of ch except src.
func (b *Broadcast) ChannelBcastButOneRaw(ch *Channel, src *Client, payload []byte) {
	dests := b.channelDestinations(ch, src, true)
	buf := NewBuffer(payload)
	b.deliver(dests, buf)
}
