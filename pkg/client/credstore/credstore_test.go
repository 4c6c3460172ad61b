package credstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCredentialsWrite(t *testing.T) {
	t.Parallel()

	t.Run("persists supplied fields", func(t *testing.T) {
		creds := New(NewMemoryStore())
		require.NoError(t, creds.Write(Fields{
			Token:        "T",
			RefreshToken: "R",
			Role:         "TEACHER",
			UserJSON:     `{"id":1}`,
		}))

		token, ok := creds.Token()
		require.True(t, ok)
		require.Equal(t, "T", token)

		refresh, ok := creds.RefreshToken()
		require.True(t, ok)
		require.Equal(t, "R", refresh)

		role, ok := creds.Role()
		require.True(t, ok)
		require.Equal(t, "TEACHER", role)
	})

	t.Run("omitted fields keep their current values", func(t *testing.T) {
		creds := New(NewMemoryStore())
		require.NoError(t, creds.Write(Fields{Token: "T", RefreshToken: "R", Role: "STUDENT", UserJSON: `{"id":2}`}))
		require.NoError(t, creds.Write(Fields{Token: "T2", RefreshToken: "R2"}))

		token, _ := creds.Token()
		require.Equal(t, "T2", token)

		role, ok := creds.Role()
		require.True(t, ok)
		require.Equal(t, "STUDENT", role)

		user, ok := creds.UserJSON()
		require.True(t, ok)
		require.Equal(t, `{"id":2}`, user)
	})
}

func TestCredentialsClear(t *testing.T) {
	t.Parallel()

	t.Run("removes all four fields", func(t *testing.T) {
		creds := New(NewMemoryStore())
		require.NoError(t, creds.Write(Fields{Token: "T", RefreshToken: "R", Role: "ADMIN", UserJSON: `{"id":3}`}))
		require.NoError(t, creds.Clear())

		_, ok := creds.Token()
		require.False(t, ok)
		_, ok = creds.RefreshToken()
		require.False(t, ok)
		_, ok = creds.Role()
		require.False(t, ok)
		_, ok = creds.UserJSON()
		require.False(t, ok)
	})

	t.Run("clearing twice is the same as clearing once", func(t *testing.T) {
		creds := New(NewMemoryStore())
		require.NoError(t, creds.Write(Fields{Token: "T"}))
		require.NoError(t, creds.Clear())
		require.NoError(t, creds.Clear())

		_, ok := creds.Token()
		require.False(t, ok)
	})

	t.Run("clearing an empty store succeeds", func(t *testing.T) {
		creds := New(NewMemoryStore())
		require.NoError(t, creds.Clear())
	})
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	t.Run("persists across reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "creds", "session.json")

		store, err := NewFileStore(path)
		require.NoError(t, err)
		require.NoError(t, store.Set(KeyToken, "T"))

		reopened, err := NewFileStore(path)
		require.NoError(t, err)
		token, ok := reopened.Get(KeyToken)
		require.True(t, ok)
		require.Equal(t, "T", token)
	})

	t.Run("missing file reads as absent", func(t *testing.T) {
		store, err := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
		require.NoError(t, err)

		_, ok := store.Get(KeyToken)
		require.False(t, ok)
	})

	t.Run("corrupt file reads as absent", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

		store, err := NewFileStore(path)
		require.NoError(t, err)

		_, ok := store.Get(KeyToken)
		require.False(t, ok)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		store, err := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
		require.NoError(t, err)

		require.NoError(t, store.Set(KeyRole, "STUDENT"))
		require.NoError(t, store.Delete(KeyRole))
		require.NoError(t, store.Delete(KeyRole))

		_, ok := store.Get(KeyRole)
		require.False(t, ok)
	})
}
