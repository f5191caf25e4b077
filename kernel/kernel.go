package kernel

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// MOTDProvider supplies the MOTD text shown to clients. The kernel never
// reads its contents — it is an out-of-scope external collaborator. The
// façade stores the one passed in Config.MOTD in an unexported field and
// offers no accessor for it.
type MOTDProvider func() []string

// Dialer is the connect half of the transport contract:
// connect(addr, port) -> socket. The kernel calls it from a background
// goroutine per attempt so a slow or hung connect never blocks the event
// loop; the result comes back as an event.
type Dialer func(address string, port int) (Socket, error)

const (
	defaultIdleThreshold   = 90 * time.Second
	defaultReaperInterval  = 5 * time.Second
	defaultReaperFirstFire = 10 * time.Second
	defaultConnectInterval = 30 * time.Second
)

// Kernel is the server façade: it owns the entity tables,
// the counters, the creation timestamp, and the single event-loop
// goroutine everything else in this package runs on.
type Kernel struct {
	ServerName    string
	NetworkName   string
	Numeric       int
	SelfToken     byte
	CreatedAt     time.Time
	CreatedString string

	motd MOTDProvider

	clients  *Table[Client]
	channels *Table[Channel]
	servers  *Table[PeerServer]

	nickIndex  *NameIndex
	chanIndex  *NameIndex
	servIndex  *NameIndex
	tokenIndex map[byte]int

	remoteServers []*RemoteServer

	bcast *Broadcast

	Counters *Counters

	events chan event

	cheapNow atomic.Int64

	idleThreshold   time.Duration
	reaperInterval  time.Duration
	connectInterval time.Duration

	dial Dialer

	selfServerIdx int

	log *log.Logger
}

// Config gathers the construction-time inputs: a client
// port and server port are the transport package's concern (it calls
// AcceptClient/AcceptPeer on whatever it binds), so the façade itself only
// needs identity and network naming plus the MOTD provider and outbound
// dialer.
type Config struct {
	ServerName  string
	NetworkName string
	Numeric     int
	SelfToken   byte
	MOTD        MOTDProvider
	Dial        Dialer

	RemoteServers []*RemoteServer

	// Capacity bounds the client/channel/server tables. Zero means
	// unbounded.
	ClientCapacity  int
	ChannelCapacity int
	ServerCapacity  int
}

// New constructs a Kernel, installs the self server entity, and sets up
// the entity tables and name indexes. It does not start the event loop or
// any timer — Run starts the reaper and connector timers, and listeners are
// bound by the transport package, which calls AcceptClient/AcceptPeer.
func New(cfg Config) *Kernel {
	now := time.Now()
	k := &Kernel{
		ServerName:      cfg.ServerName,
		NetworkName:     cfg.NetworkName,
		Numeric:         cfg.Numeric,
		SelfToken:       cfg.SelfToken,
		CreatedAt:       now,
		CreatedString:   now.Format(time.RFC1123),
		motd:            cfg.MOTD,
		clients:         NewTable[Client](cfg.ClientCapacity),
		channels:        NewTable[Channel](cfg.ChannelCapacity),
		servers:         NewTable[PeerServer](cfg.ServerCapacity),
		nickIndex:       NewNameIndex(),
		chanIndex:       NewNameIndex(),
		servIndex:       NewNameIndex(),
		tokenIndex:      make(map[byte]int),
		remoteServers:   cfg.RemoteServers,
		Counters:        &Counters{},
		events:          make(chan event, 64),
		idleThreshold:   defaultIdleThreshold,
		reaperInterval:  defaultReaperInterval,
		connectInterval: defaultConnectInterval,
		dial:            cfg.Dial,
		log:             log.New(log.Writer(), "[kernel] ", log.LstdFlags),
	}
	k.bcast = newBroadcast(k)
	k.cheapNow.Store(now.Unix())

	idx, self, _ := k.servers.Create(func(i int) *PeerServer {
		return newPeerServer(i, cfg.ServerName)
	})
	self.Token = cfg.SelfToken
	self.State = PeerRegistered
	self.Hops = 0
	self.BootTS = now
	self.LinkTS = now
	self.Desc = cfg.NetworkName + " core"
	k.selfServerIdx = idx
	k.servIndex.Put(cfg.ServerName, idx)
	k.tokenIndex[cfg.SelfToken] = idx

	return k
}

// Run is the single cooperative event loop. It
// must run on its own goroutine; every other exported method on Kernel is
// safe to call from any goroutine precisely because all they do is send on
// k.events.
func (k *Kernel) Run(stop <-chan struct{}) {
	reaperTimer := time.AfterFunc(defaultReaperFirstFire, func() {
		k.postReaperTicks(stop)
	})
	defer reaperTimer.Stop()

	connectTicker := time.NewTicker(k.connectInterval)
	defer connectTicker.Stop()
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-connectTicker.C:
				select {
				case k.events <- connectTickEv{}:
				case <-stop:
					return
				}
			}
		}
	}()

	for {
		select {
		case <-stop:
			return
		case ev := <-k.events:
			k.handle(ev)
		}
	}
}

func (k *Kernel) postReaperTicks(stop <-chan struct{}) {
	select {
	case k.events <- reaperTickEv{}:
	case <-stop:
		return
	}
	ticker := time.NewTicker(k.reaperInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			select {
			case k.events <- reaperTickEv{}:
			case <-stop:
				return
			}
		}
	}
}

func (k *Kernel) handle(ev event) {
	switch e := ev.(type) {
	case acceptClientEv:
		k.doAcceptClient(e)
	case acceptPeerEv:
		k.doAcceptPeer(e)
	case outboundConnectedEv:
		k.doOutboundConnected(e)
	case outboundFailedEv:
		k.log.Printf("outbound connect to %s failed: %v", e.remote.Name, e.err)
	case clientLineEv:
		k.dispatchClientLine(e.idx, e.msg)
	case peerLineEv:
		k.dispatchPeerLine(e.idx, e.msg)
	case clientClosedEv:
		k.doClientClosed(e.idx, e.err)
	case peerClosedEv:
		k.doPeerClosed(e.idx, e.err)
	case reaperTickEv:
		k.runReaper()
	case connectTickEv:
		k.callRemoteServers()
	default:
		k.log.Printf("unhandled event type %T", ev)
	}
}

// CheapNow returns the coarse, reaper-refreshed "now" — a cheap
// timestamp good enough for freshness checks that don't warrant a real
// time.Now() syscall.
func (k *Kernel) CheapNow() time.Time {
	return time.Unix(k.cheapNow.Load(), 0)
}

func newSessionID() string {
	return uuid.NewString()
}
