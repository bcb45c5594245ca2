package auth

import (
	"github.com/chezflora/flora-admin/internal/shared"
)

// SessionCredentials bridges the encrypted session tokens to the API
// client's credential interface. Rotation and clearing mutate the session,
// which the session middleware commits at the end of the request.
type SessionCredentials struct {
	sess  *shared.Session
	vault *shared.TokenVault
}

// NewSessionCredentials binds a session to the token vault.
func NewSessionCredentials(sess *shared.Session, vault *shared.TokenVault) *SessionCredentials {
	return &SessionCredentials{sess: sess, vault: vault}
}

func (c *SessionCredentials) AccessToken() string {
	return c.vault.AccessToken(c.sess)
}

func (c *SessionCredentials) RefreshToken() string {
	return c.vault.RefreshToken(c.sess)
}

// RotateAccess replaces the access token after a refresh. The refresh token
// stays untouched.
func (c *SessionCredentials) RotateAccess(access string) {
	_ = c.vault.StoreTokens(c.sess, access, "")
}

// Clear wipes both tokens, as required after a terminal 401.
func (c *SessionCredentials) Clear() {
	c.vault.ClearTokens(c.sess)
}

// staticCredentials carries a freshly issued token pair that is not yet
// persisted, so the post-login profile call can authenticate.
type staticCredentials struct {
	access  string
	refresh string
}

func (c *staticCredentials) AccessToken() string      { return c.access }
func (c *staticCredentials) RefreshToken() string     { return c.refresh }
func (c *staticCredentials) RotateAccess(a string)    { c.access = a }
func (c *staticCredentials) Clear()                   { c.access, c.refresh = "", "" }
