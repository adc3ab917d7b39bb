// Package password resolves agent credentials: cleartext lookup from the
// [passwords] config section and deterministic hashing of entered secrets.
package password

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"os"
	"sync"

	"golang.org/x/crypto/argon2"
)

const (
	saltLen      = 16
	hashLen      = 32
	argonTime    = 1
	argonMem     = 64 * 1024 // 64 MB
	argonThreads = 4
)

// Store holds the configured cleartext passwords and the salt used to hash
// secrets before they are embedded in connection URIs. Hashing the same
// cleartext against the same salt always yields the same secret, so a
// rebuilt URI matches the stored one.
type Store struct {
	mu        sync.RWMutex
	passwords map[string]string
	salt      []byte
}

// NewStore creates a store over the given host name -> cleartext mapping.
func NewStore(passwords map[string]string, salt []byte) *Store {
	if passwords == nil {
		passwords = make(map[string]string)
	}
	return &Store{passwords: passwords, salt: salt}
}

// Lookup returns the configured cleartext password for a host name.
func (s *Store) Lookup(hostName string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pw, ok := s.passwords[hostName]
	if pw == "" {
		return "", false
	}
	return pw, ok
}

// Hash derives the hashed secret for a cleartext password using Argon2id
// and the store's salt, hex encoded.
func (s *Store) Hash(cleartext string) string {
	key := argon2.IDKey([]byte(cleartext), s.salt, argonTime, argonMem, argonThreads, hashLen)
	return hex.EncodeToString(key)
}

// LoadOrCreateSalt reads the persisted salt at path, generating and storing
// a fresh one if the file does not exist.
func LoadOrCreateSalt(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, salt, 0600); err != nil {
		return nil, err
	}
	return salt, nil
}
