package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadListenersDefaults(t *testing.T) {
	clearIRCDEnv(t)

	l, err := LoadListeners()
	require.NoError(t, err)
	assert.Equal(t, "irc.example.net", l.ServerName)
	assert.Equal(t, ":6667", l.ClientAddr)
	assert.Equal(t, byte('0'), l.Token())
}

func TestLoadListenersOverride(t *testing.T) {
	clearIRCDEnv(t)
	t.Setenv("IRCD_SERVER_NAME", "irc.example.org")
	t.Setenv("IRCD_SELF_TOKEN", "7")

	l, err := LoadListeners()
	require.NoError(t, err)
	assert.Equal(t, "irc.example.org", l.ServerName)
	assert.Equal(t, byte('7'), l.Token())
}

func clearIRCDEnv(t *testing.T) {
	for _, k := range []string{
		"IRCD_SERVER_NAME", "IRCD_NETWORK_NAME", "IRCD_NUMERIC", "IRCD_SELF_TOKEN",
		"IRCD_CLIENT_ADDR", "IRCD_PEER_ADDR", "IRCD_REMOTE_SERVERS_FILE",
		"IRCD_CLIENT_CAPACITY", "IRCD_CHANNEL_CAPACITY", "IRCD_SERVER_CAPACITY",
	} {
		os.Unsetenv(k)
	}
}
