package kernel

// newRegisteredClient increments user counters and updates the max-users
// high-water mark. Called once, when both NICK and USER have been accepted.
func (k *Kernel) newRegisteredClient(client *Client) {
	client.Registered = true
	client.NickTS = k.CheapNow().Unix()
	k.nickIndex.Put(client.Nick, client.handle)
	k.Counters.addLocalUser(1)
}

// freeClient implements the client lifecycle: remove from
// every channel the client was in, freeing any channel that becomes empty,
// decrement counters if it had registered, then release the table slot.
// Deferred until after the current command finishes processing — callers
// never call this while iterating a set that contains client.
func (k *Kernel) freeClient(client *Client) {
	if !client.alive {
		return
	}
	client.alive = false

	for ch := range client.channels {
		channel := k.channels.Get(ch)
		channel.removeMember(client.handle)
		if channel.Empty() {
			k.freeChannel(channel)
		}
	}
	client.channels = nil

	if client.Registered {
		if client.Local {
			k.Counters.addLocalUser(-1)
		} else {
			k.Counters.addRemoteUser(-1)
		}
	}
	if client.Nick != "" {
		k.nickIndex.Remove(client.Nick)
	}
	if client.queue != nil {
		client.queue.Close()
	}
	k.clients.Free(client.handle)
}

// dropClient closes the client's socket and frees its slot. err classifies
// why; it is logged, not propagated.
func (k *Kernel) dropClient(client *Client, err *KernelError) {
	if client == nil || !client.alive {
		return
	}
	if err != nil {
		k.log.Printf("dropping client %s: %v", client.Nick, err)
	}
	if client.sock != nil {
		client.sock.Close()
	}
	k.freeClient(client)
}

func (k *Kernel) doClientClosed(idx int, err error) {
	if !k.clients.IsLive(idx) {
		return
	}
	k.freeClient(k.clients.Get(idx))
	_ = err
}

// createChannel allocates a
// channel slot, indexes it by name, and bumps STAT_CHANNELS.
func (k *Kernel) createChannel(name string) *Channel {
	_, channel, err := k.channels.Create(func(i int) *Channel {
		return newChannel(i, name, k.CheapNow())
	})
	if err != nil {
		return nil
	}
	k.chanIndex.Put(chanKey(name), channel.handle)
	k.Counters.incChans()
	return channel
}

// freeChannel releases a channel slot once membership becomes empty.
func (k *Kernel) freeChannel(channel *Channel) {
	k.chanIndex.Remove(chanKey(channel.Name))
	k.channels.Free(channel.handle)
	k.Counters.decChans()
}

// joinChannel adds client to channel, maintaining the reciprocal
// membership invariant. Creates the channel if it does not yet exist.
// name is matched case-insensitively: "#Foo" and "#foo" resolve to the
// same channel, keeping whichever case first created it.
func (k *Kernel) joinChannel(client *Client, name string) *Channel {
	chidx := k.chanIndex.Find(chanKey(name))
	var channel *Channel
	if chidx == NoIndex {
		channel = k.createChannel(name)
	} else {
		channel = k.channels.Get(chidx)
	}
	channel.addMember(client.handle)
	client.joinChannel(channel.handle)
	return channel
}

// partChannel removes client from channel, freeing the channel if that
// empties it.
func (k *Kernel) partChannel(client *Client, channel *Channel) {
	channel.removeMember(client.handle)
	client.partChannel(channel.handle)
	if channel.Empty() {
		k.freeChannel(channel)
	}
}
