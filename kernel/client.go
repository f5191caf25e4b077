package kernel

import "time"

// Client is a user connection. Invariant: if Registered,
// Nick is unique across the network and present in the kernel's nickname
// index.
type Client struct {
	handle int

	sock  Socket
	queue *OutQueue
	alive bool

	Registered bool
	Nick       string
	User       string
	Host       string
	Real       string
	IP         string
	Modes      string

	// Local is true for a client accepted on this server's own listener,
	// false for one introduced by a peer's netburst or relay. Only local
	// clients count toward STAT_LOCAL_USERS.
	Local bool

	// NickTS is the Unix timestamp the current Nick was claimed, used by
	// the nick-collision TS rule: the older timestamp wins.
	NickTS int64

	// ServerToken is the one-character routing token of the server this
	// client resides on (self's token for local clients, the owning peer's
	// token for remote ones). ServerID is that server's handle.
	ServerToken byte
	ServerID    int

	channels map[int]struct{}

	lastActivity time.Time
	pinged       bool
}

func newClient(idx int, sock Socket) *Client {
	return &Client{
		handle:       idx,
		sock:         sock,
		alive:        true,
		Local:        true,
		channels:     make(map[int]struct{}),
		lastActivity: time.Now(),
	}
}

// Handle returns this client's stable clindex.
func (c *Client) Handle() int { return c.handle }

// Alive reports whether the client is still occupying its slot.
func (c *Client) Alive() bool { return c.alive }

// Channels returns the set of channel handles this client has joined. The
// returned map must not be mutated by callers.
func (c *Client) Channels() map[int]struct{} { return c.channels }

func (c *Client) joinChannel(ch int)  { c.channels[ch] = struct{}{} }
func (c *Client) partChannel(ch int)  { delete(c.channels, ch) }
func (c *Client) touch(now time.Time) { c.lastActivity = now; c.pinged = false }
