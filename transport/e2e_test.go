package transport

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/lrstanley/girc"
	"github.com/stretchr/testify/require"

	"github.com/presbrey/ircd/kernel"
)

// freePort asks the OS for an unused TCP port, the way a test that can't
// hardcode its bind address has to.
func freePort(t *testing.T) int {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

// TestGircClientJoinsAndReceivesWelcome drives a real girc client against
// a real TCP listener backed by the kernel, exercising the full
// transport -> wire -> kernel round trip end to end.
func TestGircClientJoinsAndReceivesWelcome(t *testing.T) {
	port := freePort(t)
	k := kernel.New(kernel.Config{
		ServerName:  "e2e.test",
		NetworkName: "E2ENet",
		SelfToken:   '0',
	})
	require.NoError(t, ListenClients("127.0.0.1:"+strconv.Itoa(port), k))

	stop := make(chan struct{})
	defer close(stop)
	go k.Run(stop)

	client := girc.New(girc.Config{
		Server: "127.0.0.1",
		Port:   port,
		Nick:   "gircuser",
		User:   "gircuser",
	})

	joined := make(chan struct{}, 1)
	client.Handlers.Add(girc.CONNECTED, func(c *girc.Client, e girc.Event) {
		c.Cmd.Join("#e2e")
	})
	client.Handlers.Add(girc.JOIN, func(c *girc.Client, e girc.Event) {
		select {
		case joined <- struct{}{}:
		default:
		}
	})

	go client.Connect()
	defer client.Close()

	select {
	case <-joined:
	case <-time.After(5 * time.Second):
		t.Fatal("girc client never observed its own JOIN to #e2e")
	}
}
