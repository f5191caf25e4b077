package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRemoteServersEmptyPath(t *testing.T) {
	servers, err := LoadRemoteServers("")
	require.NoError(t, err)
	assert.Nil(t, servers)
}

func TestLoadRemoteServersValid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "peers.toml")
	doc := `
[[remote_server]]
name = "leaf1"
address = "leaf1.example.net"
port = 7000
secret = "s3cret"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	servers, err := LoadRemoteServers(path)
	require.NoError(t, err)
	require.Len(t, servers, 1)
	assert.Equal(t, "leaf1", servers[0].Name)
	assert.Equal(t, 7000, servers[0].Port)
	assert.NotEmpty(t, servers[0].SecretHash())
}

func TestLoadRemoteServersMissingField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "peers.toml")
	doc := `
[[remote_server]]
name = "leaf1"
address = "leaf1.example.net"
secret = "s3cret"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	_, err := LoadRemoteServers(path)
	assert.Error(t, err, "port is required and must be validated")
}
