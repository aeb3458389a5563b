// Package keychain stores secrets in the operating system's credential store.
package keychain

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/99designs/keyring"
)

// serviceName is the service identifier used for all mpcatalog credentials.
const serviceName = "mpcatalog"

// ErrNotFound is returned when a credential is not found in the keychain.
var ErrNotFound = errors.New("credential not found in keychain")

// Keychain provides secure credential storage.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/keychain.go . Keychain
type Keychain interface {
	// Set stores a credential in the keychain.
	Set(account, secret string) error

	// Get retrieves a credential from the keychain.
	// Returns ErrNotFound if the credential does not exist.
	Get(account string) (string, error)

	// Delete removes a credential from the keychain.
	// Returns nil if the credential does not exist.
	Delete(account string) error
}

type keychain struct {
	open func() (keyring.Keyring, error)

	once sync.Once
	ring keyring.Keyring
	err  error
}

// New creates a Keychain backed by the first available platform backend
// (macOS Keychain, Windows Credential Manager, Secret Service, KWallet, pass
// or an encrypted file). The backend is opened on first use.
func New() Keychain {
	return &keychain{open: func() (keyring.Keyring, error) {
		return keyring.Open(keyring.Config{
			ServiceName:              serviceName,
			KeychainTrustApplication: true,
			FileDir:                  "~/.local/share/mpcatalog/keyring",
			FilePasswordFunc:         keyring.TerminalPrompt,
		})
	}}
}

// newWithRing wraps an already open keyring.
func newWithRing(ring keyring.Keyring) *keychain {
	return &keychain{open: func() (keyring.Keyring, error) { return ring, nil }}
}

func (k *keychain) backend() (keyring.Keyring, error) {
	k.once.Do(func() {
		k.ring, k.err = k.open()
		if k.err != nil {
			k.err = fmt.Errorf("open keychain: %w", k.err)
		}
	})
	return k.ring, k.err
}

func (k *keychain) Set(account, secret string) error {
	ring, err := k.backend()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:   account,
		Data:  []byte(secret),
		Label: "mpcatalog - " + account,
	})
	if err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	return nil
}

func (k *keychain) Get(account string) (string, error) {
	ring, err := k.backend()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(account)
	if isNotFound(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}
	return string(item.Data), nil
}

func (k *keychain) Delete(account string) error {
	ring, err := k.backend()
	if err != nil {
		return err
	}

	if err := ring.Remove(account); err != nil && !isNotFound(err) {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, keyring.ErrKeyNotFound) || errors.Is(err, os.ErrNotExist)
}
