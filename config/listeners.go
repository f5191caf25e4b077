// Package config loads the ambient settings the kernel and transport
// packages need to boot: listener addresses from the environment, and
// the configured remote-server peer table from a TOML file. It follows
// the same two-source split as the example this module is patterned on —
// caarlos0/env for process environment, BurntSushi/toml for structured
// records — rather than inventing a third format for either.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

// Listeners is the env-driven half of boot configuration: identity and
// the two ports the transport package binds.
type Listeners struct {
	ServerName  string `env:"IRCD_SERVER_NAME" envDefault:"irc.example.net"`
	NetworkName string `env:"IRCD_NETWORK_NAME" envDefault:"ExampleNet"`
	Numeric     int    `env:"IRCD_NUMERIC" envDefault:"1"`
	// SelfToken's first byte is this server's routing token. It must be an
	// ASCII digit: peer lines are told apart from unprefixed ones by a
	// single-digit leading token. LoadListeners checks only that it is set.
	SelfToken string `env:"IRCD_SELF_TOKEN" envDefault:"0"`

	ClientAddr string `env:"IRCD_CLIENT_ADDR" envDefault:":6667"`
	PeerAddr   string `env:"IRCD_PEER_ADDR" envDefault:":7000"`

	RemoteServersFile string `env:"IRCD_REMOTE_SERVERS_FILE" envDefault:""`

	ClientCapacity  int `env:"IRCD_CLIENT_CAPACITY" envDefault:"0"`
	ChannelCapacity int `env:"IRCD_CHANNEL_CAPACITY" envDefault:"0"`
	ServerCapacity  int `env:"IRCD_SERVER_CAPACITY" envDefault:"0"`
}

// LoadListeners parses Listeners from the process environment.
func LoadListeners() (*Listeners, error) {
	l := &Listeners{}
	if err := env.Parse(l); err != nil {
		return nil, fmt.Errorf("config: parse listeners: %w", err)
	}
	if len(l.SelfToken) == 0 {
		return nil, fmt.Errorf("config: IRCD_SELF_TOKEN must not be empty")
	}
	return l, nil
}

// Token returns the configured self-token as the single byte the kernel's
// Config.SelfToken field expects.
func (l *Listeners) Token() byte {
	return l.SelfToken[0]
}
