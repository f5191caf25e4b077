package kernel

import "github.com/presbrey/ircd/wire"

// event is the sum type the single event-loop goroutine consumes. Every
// public Kernel method that needs to touch entity state constructs one of
// these and sends it on k.events; nothing past that send happens outside
// the loop goroutine.
type event interface{}

type acceptClientEv struct {
	sock Socket
	resp chan int
}

type acceptPeerEv struct {
	sock Socket
	resp chan int
}

type outboundConnectedEv struct {
	remote *RemoteServer
	sock   Socket
}

type outboundFailedEv struct {
	remote *RemoteServer
	err    error
}

type clientLineEv struct {
	idx int
	msg wire.Message
}

type peerLineEv struct {
	idx int
	msg wire.Message
}

type clientClosedEv struct {
	idx int
	err error
}

type peerClosedEv struct {
	idx int
	err error
}

type reaperTickEv struct{}

type connectTickEv struct{}
