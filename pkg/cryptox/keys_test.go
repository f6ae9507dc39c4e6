package cryptox_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Undertone0809/ecjtu/pkg/cryptox"
)

func TestLoadOrCreateKey(t *testing.T) {
	t.Run("creates on first use", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "master.key")

		key, err := cryptox.LoadOrCreateKey(path)
		require.NoError(t, err)
		require.Len(t, key, cryptox.MasterKeySize)

		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("reloads the same key", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "master.key")

		first, err := cryptox.LoadOrCreateKey(path)
		require.NoError(t, err)
		second, err := cryptox.LoadOrCreateKey(path)
		require.NoError(t, err)
		require.Equal(t, first, second)
	})

	t.Run("rejects a truncated key file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "master.key")
		require.NoError(t, os.WriteFile(path, []byte("short"), 0o600))

		_, err := cryptox.LoadOrCreateKey(path)
		require.Error(t, err)
	})
}

func TestDeriveKey(t *testing.T) {
	master := make([]byte, cryptox.MasterKeySize)
	for i := range master {
		master[i] = byte(i)
	}

	access1, err := cryptox.DeriveKey(master, "access-token")
	require.NoError(t, err)
	access2, err := cryptox.DeriveKey(master, "access-token")
	require.NoError(t, err)
	refresh, err := cryptox.DeriveKey(master, "refresh-token")
	require.NoError(t, err)

	require.Equal(t, access1, access2)
	require.NotEqual(t, access1, refresh)
	require.Len(t, access1, cryptox.MasterKeySize)
}
