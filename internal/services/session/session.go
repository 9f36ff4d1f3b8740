// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package session implements stateless, signed cookies for admin logins
// and visitor preferences.
package session

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"codeberg.org/oliverandrich/teaching-award/internal/config"
	"github.com/gorilla/securecookie"
)

const keyLength = 32

// PrefsCookieName is the name of the visitor preference cookie.
const PrefsCookieName = "_prefs"

// Data is the payload of an admin session cookie.
type Data struct {
	ExpiresAt time.Time
	Username  string
	UserID    int64
}

// Prefs are visitor preferences kept for the browser session.
type Prefs struct {
	HintDismissed bool
}

// Manager encodes and decodes session cookies.
type Manager struct {
	codec  *securecookie.SecureCookie
	name   string
	maxAge int
	secure bool
}

// NewManager creates a Manager. An empty hash key generates a random one,
// which invalidates all sessions on restart.
func NewManager(cfg *config.SessionConfig, secure bool) (*Manager, error) {
	var hashKey []byte
	if cfg.HashKey == "" {
		slog.Warn("no session hash key configured, generating a temporary one")
		hashKey = securecookie.GenerateRandomKey(keyLength)
	} else {
		key, err := decodeKey(cfg.HashKey)
		if err != nil {
			return nil, fmt.Errorf("invalid session hash key: %w", err)
		}
		hashKey = key
	}

	var blockKey []byte
	if cfg.BlockKey != "" {
		key, err := decodeKey(cfg.BlockKey)
		if err != nil {
			return nil, fmt.Errorf("invalid session block key: %w", err)
		}
		blockKey = key
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(cfg.MaxAge)

	return &Manager{
		codec:  codec,
		name:   cfg.CookieName,
		maxAge: cfg.MaxAge,
		secure: secure,
	}, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(key) != keyLength {
		return nil, fmt.Errorf("must be %d bytes, got %d", keyLength, len(key))
	}
	return key, nil
}

// Create returns a signed session cookie for the user.
func (m *Manager) Create(userID int64, username string) (*http.Cookie, error) {
	data := Data{
		UserID:    userID,
		Username:  username,
		ExpiresAt: time.Now().Add(time.Duration(m.maxAge) * time.Second),
	}

	value, err := m.codec.Encode(m.name, data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}

	return m.cookie(m.name, value, m.maxAge), nil
}

// Parse returns the session carried by the request, or nil when there is
// none or it does not verify.
func (m *Manager) Parse(r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(m.name)
	if err != nil {
		return nil, nil //nolint:nilerr // missing cookie means no session
	}

	var data Data
	if err := m.codec.Decode(m.name, cookie.Value, &data); err != nil {
		slog.Debug("discarding invalid session cookie", "error", err)
		return nil, nil
	}
	if time.Now().After(data.ExpiresAt) {
		return nil, nil
	}
	return &data, nil
}

// Clear returns a cookie that removes the session.
func (m *Manager) Clear() *http.Cookie {
	return m.cookie(m.name, "", -1)
}

// DismissHint returns a preference cookie recording that the visitor
// dismissed the language hint. It lives until the browser closes.
func (m *Manager) DismissHint() (*http.Cookie, error) {
	value, err := m.codec.Encode(PrefsCookieName, Prefs{HintDismissed: true})
	if err != nil {
		return nil, fmt.Errorf("failed to encode preferences: %w", err)
	}
	return m.cookie(PrefsCookieName, value, 0), nil
}

// HintDismissed reports whether the request carries a valid preference
// cookie with the hint dismissed.
func (m *Manager) HintDismissed(r *http.Request) bool {
	cookie, err := r.Cookie(PrefsCookieName)
	if err != nil {
		return false
	}
	var prefs Prefs
	if err := m.codec.Decode(PrefsCookieName, cookie.Value, &prefs); err != nil {
		return false
	}
	return prefs.HintDismissed
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
