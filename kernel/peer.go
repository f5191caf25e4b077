package kernel

import "time"

// PeerState is the state of a peer server entity.
type PeerState int

const (
	PeerConnecting PeerState = iota
	PeerUnregistered
	PeerRegistered
	PeerClosed
)

func (s PeerState) String() string {
	switch s {
	case PeerConnecting:
		return "connecting"
	case PeerUnregistered:
		return "unregistered"
	case PeerRegistered:
		return "registered"
	case PeerClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// PeerServer is another ircd linked into the network.
// Invariant: Token is unique across all known servers, Name is unique; if
// IsLocal, Sock is non-nil.
type PeerServer struct {
	handle int

	sock  Socket
	queue *OutQueue

	Name    string
	Token   byte
	Desc    string
	Hops    int
	BootTS  time.Time
	LinkTS  time.Time
	IsLocal bool

	State PeerState

	// burstSent tracks burst-in-progress per peer, not globally.
	burstSent         bool
	incomingBurstDone bool

	// remote is the shared-secret record used for PASS/SERVER
	// authentication on local, unregistered links. Remote (non-local)
	// peers learned only through the network carry no record.
	remote *RemoteServer

	// offeredPass holds the PASS half of the handshake until SERVER
	// arrives to complete it.
	offeredPass string

	// handshakeSent is true once we've sent our own PASS/SERVER on this
	// link, whichever side initiated. An outbound connect sends it the
	// instant the socket is up; an inbound accept sends it only after
	// validating the peer's own SERVER, so it's never sent twice.
	handshakeSent bool

	lastActivity time.Time
	pinged       bool

	// sessionID correlates log lines for one handshake/netburst attempt.
	sessionID string
}

func newPeerServer(idx int, name string) *PeerServer {
	return &PeerServer{
		handle:       idx,
		Name:         name,
		State:        PeerConnecting,
		lastActivity: time.Now(),
	}
}

// Handle returns this peer's stable sindex.
func (p *PeerServer) Handle() int { return p.handle }

// Registered reports whether the link has completed the PASS/SERVER
// handshake.
func (p *PeerServer) Registered() bool { return p.State == PeerRegistered }

func (p *PeerServer) touch(now time.Time) { p.lastActivity = now; p.pinged = false }

// RemoteServer is a configured peer: name, shared secret,
// address, and port, consulted by accept_remote_server and the periodic
// connector.
type RemoteServer struct {
	Name      string `toml:"name" validate:"required"`
	Address   string `toml:"address" validate:"required"`
	Port      int    `toml:"port" validate:"required,gt=0,lte=65535"`
	SecretRaw string `toml:"secret" validate:"required"`

	// secretHash is the bcrypt digest of SecretRaw, computed once after
	// validation (config.LoadRemoteServers wires golang.org/x/crypto/bcrypt
	// for this). The shared secret is symmetric — an outbound connect must
	// still send the cleartext SecretRaw as PASS — so unlike a login
	// password, SecretRaw is kept alongside the hash rather than discarded;
	// the hash exists so comparing an inbound peer's offered PASS never
	// needs a constant-time cleartext comparison of its own.
	secretHash []byte
}

// SetSecretHash installs the bcrypt digest of SecretRaw. Called once by
// config.LoadRemoteServers after loading.
func (r *RemoteServer) SetSecretHash(hash []byte) {
	r.secretHash = hash
}

// SecretHash returns the bcrypt digest used to authenticate this peer.
func (r *RemoteServer) SecretHash() []byte { return r.secretHash }
