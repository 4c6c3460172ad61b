// Package credstore persists a client session's credentials across process
// restarts. It stores four fields: the access token, the refresh token, the
// role, and a JSON snapshot of the signed-in user.
package credstore

// Keys used for storing session fields.
const (
	KeyToken        = "token"
	KeyRefreshToken = "refreshToken"
	KeyRole         = "role"
	KeyUser         = "user"
)

// Store is a small key-value backend. Get reports absence instead of
// returning an error, so callers can treat any storage trouble as a
// logged-out session rather than a crash.
type Store interface {
	Set(key, value string) error
	Get(key string) (string, bool)
	Delete(key string) error
}

// Fields carries the session values to persist. Empty fields are left
// untouched, so a token refresh can rewrite the tokens without dropping
// the cached user.
type Fields struct {
	Token        string
	RefreshToken string
	Role         string
	UserJSON     string
}

// Credentials wraps a Store with the session field layout.
type Credentials struct {
	store Store
}

func New(store Store) *Credentials {
	return &Credentials{store: store}
}

// Write persists whichever fields are supplied. Omitted fields keep their
// current values.
func (c *Credentials) Write(f Fields) error {
	if f.Token != "" {
		if err := c.store.Set(KeyToken, f.Token); err != nil {
			return err
		}
	}
	if f.RefreshToken != "" {
		if err := c.store.Set(KeyRefreshToken, f.RefreshToken); err != nil {
			return err
		}
	}
	if f.Role != "" {
		if err := c.store.Set(KeyRole, f.Role); err != nil {
			return err
		}
	}
	if f.UserJSON != "" {
		if err := c.store.Set(KeyUser, f.UserJSON); err != nil {
			return err
		}
	}
	return nil
}

func (c *Credentials) Token() (string, bool)        { return c.store.Get(KeyToken) }
func (c *Credentials) RefreshToken() (string, bool) { return c.store.Get(KeyRefreshToken) }
func (c *Credentials) Role() (string, bool)         { return c.store.Get(KeyRole) }
func (c *Credentials) UserJSON() (string, bool)     { return c.store.Get(KeyUser) }

// Clear removes all four session fields. Deletes are idempotent, so
// clearing an already-empty store is a no-op.
func (c *Credentials) Clear() error {
	var firstErr error
	for _, key := range []string{KeyToken, KeyRefreshToken, KeyRole, KeyUser} {
		if err := c.store.Delete(key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
