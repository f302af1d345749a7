package credential

import (
	"errors"
	"fmt"
	"strings"

	"github.com/99designs/keyring"
	"github.com/NordCoder/wanikani-bot/internal/domain/study"
	"go.uber.org/zap"
)

type Loader struct {
	Token       string // from config or WANIKANI_API_KEY
	KeyringKey  string
	OpenKeyring Opener // nil disables the keyring fallback
	Log         *zap.Logger
}

// Load returns the configured token, or the one stored in the keyring.
// Nothing found is a configuration error.
func (l Loader) Load() (study.Credential, error) {
	log := l.Log
	if log == nil {
		log = zap.NewNop()
	}

	if t := strings.TrimSpace(l.Token); t != "" {
		log.Debug("wanikani token loaded", zap.String("source", "config"))
		return study.Credential{Token: t, Source: "config"}, nil
	}
	if l.OpenKeyring == nil {
		return study.Credential{}, fmt.Errorf("%w: wanikani.api_key (WANIKANI_API_KEY) is not set", study.ErrConfiguration)
	}

	ring, err := l.OpenKeyring()
	if err != nil {
		return study.Credential{}, fmt.Errorf("%w: no wanikani.api_key and %w", study.ErrConfiguration, err)
	}
	item, err := ring.Get(l.KeyringKey)
	switch {
	case errors.Is(err, keyring.ErrKeyNotFound):
		return study.Credential{}, fmt.Errorf("%w: wanikani.api_key is not set and keyring has no %q", study.ErrConfiguration, l.KeyringKey)
	case err != nil:
		return study.Credential{}, fmt.Errorf("%w: getting credential %q: %w", study.ErrConfiguration, l.KeyringKey, err)
	}

	t := strings.TrimSpace(string(item.Data))
	if t == "" {
		return study.Credential{}, fmt.Errorf("%w: keyring entry %q is empty", study.ErrConfiguration, l.KeyringKey)
	}
	log.Debug("wanikani token loaded", zap.String("source", "keyring"))
	return study.Credential{Token: t, Source: "keyring"}, nil
}
