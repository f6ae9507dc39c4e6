package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/hkdf"
)

// MasterKeySize is the size of the on-disk master key in bytes.
const MasterKeySize = 32

// LoadOrCreateKey reads the master key from path, generating and persisting a
// new random key on first use. The file is created with 0600 permissions.
func LoadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) < MasterKeySize {
			return nil, fmt.Errorf("cryptox: key file %s is too short (%d bytes)", path, len(key))
		}
		return key[:MasterKeySize], nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cryptox: read key file: %w", err)
	}

	key = make([]byte, MasterKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("cryptox: generate key: %w", err)
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("cryptox: write key file: %w", err)
	}
	return key, nil
}

// DeriveKey expands the master key into a purpose-bound subkey using
// HKDF-SHA256. Distinct info strings yield independent keys, so signing keys
// for different token kinds never overlap.
func DeriveKey(master []byte, info string) ([]byte, error) {
	r := hkdf.New(sha256.New, master, nil, []byte(info))
	key := make([]byte, MasterKeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("cryptox: derive key %q: %w", info, err)
	}
	return key, nil
}
