package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/99designs/keyring"
	config "github.com/NordCoder/wanikani-bot/internal/config/wanikani-bot"
	"github.com/NordCoder/wanikani-bot/internal/credential"
	"github.com/stretchr/testify/require"
)

func arrayRing(t *testing.T) (keyring.Keyring, credential.Opener) {
	t.Helper()
	ring := keyring.NewArrayKeyring(nil)
	return ring, func() (keyring.Keyring, error) { return ring, nil }
}

func readConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Read(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	return cfg
}

func storedToken(t *testing.T, ring keyring.Keyring, key string) string {
	t.Helper()
	item, err := ring.Get(key)
	require.NoError(t, err)
	return string(item.Data)
}

func TestRun_SetFromStdin(t *testing.T) {
	t.Setenv("WANIKANI_API_KEY", "")
	ring, open := arrayRing(t)

	msg, err := run([]string{"set"}, readConfig(t), open, strings.NewReader("  stdin-token \n"))
	require.NoError(t, err)
	require.Contains(t, msg, "wanikani_api_key")
	require.Equal(t, "stdin-token", storedToken(t, ring, "wanikani_api_key"))
}

func TestRun_SetFromEnvIgnoresStdin(t *testing.T) {
	t.Setenv("WANIKANI_API_KEY", "env-token")
	ring, open := arrayRing(t)

	_, err := run([]string{"set"}, readConfig(t), open, strings.NewReader("stdin-token\n"))
	require.NoError(t, err)
	require.Equal(t, "env-token", storedToken(t, ring, "wanikani_api_key"))
}

func TestRun_SetEmptyToken(t *testing.T) {
	t.Setenv("WANIKANI_API_KEY", "")
	ring, open := arrayRing(t)

	_, err := run([]string{"set"}, readConfig(t), open, strings.NewReader(""))
	require.Error(t, err)
	_, err = ring.Get("wanikani_api_key")
	require.ErrorIs(t, err, keyring.ErrKeyNotFound)
}

func TestRun_Delete(t *testing.T) {
	t.Setenv("WANIKANI_API_KEY", "")
	ring, open := arrayRing(t)
	require.NoError(t, ring.Set(keyring.Item{Key: "wanikani_api_key", Data: []byte("old")}))

	_, err := run([]string{"delete"}, readConfig(t), open, nil)
	require.NoError(t, err)
	_, err = ring.Get("wanikani_api_key")
	require.ErrorIs(t, err, keyring.ErrKeyNotFound)

	// deleting twice is fine
	_, err = run([]string{"delete"}, readConfig(t), open, nil)
	require.NoError(t, err)
}

func TestRun_Usage(t *testing.T) {
	_, open := arrayRing(t)
	_, err := run(nil, readConfig(t), open, nil)
	require.ErrorIs(t, err, errUsage)
	_, err = run([]string{"rotate"}, readConfig(t), open, nil)
	require.ErrorIs(t, err, errUsage)
}
