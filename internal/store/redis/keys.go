package redis

import "fmt"

const (
	// KeyPrefixCredential is the prefix for persisted credentials
	KeyPrefixCredential = "storefront:credential:"
)

// CredentialKey returns the Redis key holding the credential of a client id
func CredentialKey(clientID string) string {
	return KeyPrefixCredential + clientID
}

// ExtractClientID extracts the client id from a credential key
func ExtractClientID(key string) (string, error) {
	if len(key) <= len(KeyPrefixCredential) {
		return "", fmt.Errorf("invalid credential key: %s", key)
	}
	return key[len(KeyPrefixCredential):], nil
}
