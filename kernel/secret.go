package kernel

import "golang.org/x/crypto/bcrypt"

// bcryptCompare reports whether pass hashes to hash. A nil or empty hash
// never matches, so a misconfigured remote-server record fails closed.
func bcryptCompare(hash []byte, pass string) bool {
	if len(hash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(pass)) == nil
}

// HashSecret computes the bcrypt digest config.LoadRemoteServers installs on
// each loaded record via RemoteServer.SetSecretHash.
func HashSecret(secret string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
}
