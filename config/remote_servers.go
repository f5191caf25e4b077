package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/presbrey/ircd/kernel"
)

// remoteServersFile is the on-disk shape of the configured peer table —
// kernel.RemoteServer itself carries the toml/validate tags, so this file
// just wraps the slice the way a TOML document needs a top-level key.
type remoteServersFile struct {
	RemoteServer []*kernel.RemoteServer `toml:"remote_server"`
}

var validate = validator.New()

// LoadRemoteServers reads and validates the peer table from a TOML file,
// hashing each record's shared secret so Kernel.acceptRemoteServer never
// needs the cleartext for comparison. An empty path is not
// an error — it means no configured peers, which is a legitimate
// leaf-node deployment.
func LoadRemoteServers(path string) ([]*kernel.RemoteServer, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read remote servers file: %w", err)
	}
	var doc remoteServersFile
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse remote servers file: %w", err)
	}
	for _, r := range doc.RemoteServer {
		if err := validate.Struct(r); err != nil {
			return nil, fmt.Errorf("config: remote server %q: %w", r.Name, err)
		}
		hash, err := kernel.HashSecret(r.SecretRaw)
		if err != nil {
			return nil, fmt.Errorf("config: hash secret for %q: %w", r.Name, err)
		}
		r.SetSecretHash(hash)
	}
	return doc.RemoteServer, nil
}
