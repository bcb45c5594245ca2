package shared

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

// Session keys holding the encrypted remote API credentials.
const (
	tokenAccessKey  = "access_token"
	tokenRefreshKey = "refresh_token"
)

// TokenVault encrypts API tokens before they reach the session store, so a
// leaked Redis dump does not hand out live bearer tokens.
type TokenVault struct {
	key [32]byte
}

// NewTokenVault derives a vault from a base64 encoded 32 byte key.
func NewTokenVault(encodedKey string) (*TokenVault, error) {
	raw, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("token vault: decode key: %w", err)
	}
	if len(raw) != 32 {
		return nil, errors.New("token vault: key must be 32 bytes")
	}
	v := &TokenVault{}
	copy(v.key[:], raw)
	return v, nil
}

// Seal encrypts a token for storage.
func (v *TokenVault) Seal(token string) (string, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("token vault: nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(token), &nonce, &v.key)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a stored token.
func (v *TokenVault) Open(sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("token vault: decode: %w", err)
	}
	if len(raw) < 24 {
		return "", errors.New("token vault: ciphertext too short")
	}
	var nonce [24]byte
	copy(nonce[:], raw[:24])
	plain, ok := secretbox.Open(nil, raw[24:], &nonce, &v.key)
	if !ok {
		return "", errors.New("token vault: open failed")
	}
	return string(plain), nil
}

// StoreTokens seals and stores the access/refresh pair in the session.
func (v *TokenVault) StoreTokens(sess *Session, access, refresh string) error {
	if sess == nil {
		return errors.New("token vault: session missing")
	}
	sealedAccess, err := v.Seal(access)
	if err != nil {
		return err
	}
	sess.Set(tokenAccessKey, sealedAccess)
	if refresh != "" {
		sealedRefresh, err := v.Seal(refresh)
		if err != nil {
			return err
		}
		sess.Set(tokenRefreshKey, sealedRefresh)
	}
	return nil
}

// AccessToken returns the decrypted access token, or "" when absent.
func (v *TokenVault) AccessToken(sess *Session) string {
	if sess == nil {
		return ""
	}
	sealed := sess.Get(tokenAccessKey)
	if sealed == "" {
		return ""
	}
	token, err := v.Open(sealed)
	if err != nil {
		return ""
	}
	return token
}

// RefreshToken returns the decrypted refresh token, or "" when absent.
func (v *TokenVault) RefreshToken(sess *Session) string {
	if sess == nil {
		return ""
	}
	sealed := sess.Get(tokenRefreshKey)
	if sealed == "" {
		return ""
	}
	token, err := v.Open(sealed)
	if err != nil {
		return ""
	}
	return token
}

// ClearTokens removes both tokens, as required after a terminal 401.
func (v *TokenVault) ClearTokens(sess *Session) {
	if sess == nil {
		return
	}
	sess.Delete(tokenAccessKey)
	sess.Delete(tokenRefreshKey)
}
