package credential

import (
	"errors"
	"fmt"
	"os"

	"github.com/99designs/keyring"
	config "github.com/NordCoder/wanikani-bot/internal/config/wanikani-bot"
)

// Opener opens the keyring lazily so runs with a configured token never touch it.
type Opener func() (keyring.Keyring, error)

// SystemKeyring opens the OS keyring, falling back to an encrypted file under cfg.FileDir.
// The file backend password comes from WKBOT_KEYRING_PASSWORD.
func SystemKeyring(cfg config.Keyring) Opener {
	return func() (keyring.Keyring, error) {
		ring, err := keyring.Open(keyring.Config{
			ServiceName: cfg.Service,
			AllowedBackends: []keyring.BackendType{
				keyring.KeychainBackend,
				keyring.SecretServiceBackend,
				keyring.WinCredBackend,
				keyring.PassBackend,
				keyring.FileBackend,
			},
			FileDir:                  cfg.FileDir,
			FilePasswordFunc:         filePassword,
			KeychainTrustApplication: true,
		})
		if err != nil {
			return nil, fmt.Errorf("opening keyring: %w", err)
		}
		return ring, nil
	}
}

func filePassword(string) (string, error) {
	if p := os.Getenv("WKBOT_KEYRING_PASSWORD"); p != "" {
		return p, nil
	}
	return "", errors.New("WKBOT_KEYRING_PASSWORD is not set")
}

// Store saves token under key.
func Store(open Opener, key, token string) error {
	ring, err := open()
	if err != nil {
		return err
	}
	if err := ring.Set(keyring.Item{Key: key, Data: []byte(token), Label: "WaniKani API token"}); err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Remove deletes key; a missing key is not an error.
func Remove(open Opener, key string) error {
	ring, err := open()
	if err != nil {
		return err
	}
	if err := ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}
