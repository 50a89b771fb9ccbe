// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/expert-survey/auth"
	"github.com/danielhkuo/expert-survey/models"
)

const (
	CookieName      = "survey_session"
	DefaultLifetime = 14 * 24 * time.Hour
)

type Options struct {
	Secret   string
	SameSite http.SameSite
	Secure   bool
	Lifetime time.Duration
}

// Manager ties a signed session cookie to an identity in a Store.
type Manager struct {
	store Store
	opts  Options
	Now   func() time.Time
}

func NewManager(store Store, opts Options) *Manager {
	if opts.Lifetime <= 0 {
		opts.Lifetime = DefaultLifetime
	}
	if opts.SameSite == 0 {
		opts.SameSite = http.SameSiteLaxMode
	}
	return &Manager{store: store, opts: opts, Now: time.Now}
}

// sessionID returns the verified id from the request cookie, or "".
func (m *Manager) sessionID(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	id, err := auth.Verify(c.Value, m.opts.Secret)
	if err != nil {
		slog.Warn("rejected session cookie", "error", err)
		return ""
	}
	return id
}

// Load returns the identity of the request's session. Store failures are
// logged and reported as no identity.
func (m *Manager) Load(r *http.Request) (models.Identity, bool) {
	id := m.sessionID(r)
	if id == "" {
		return models.Identity{}, false
	}
	who, ok, err := m.store.Get(r.Context(), id, m.Now())
	if err != nil {
		slog.Error("failed to load session", "error", err)
		return models.Identity{}, false
	}
	return who, ok
}

// Save binds who to the request's session, starting a new one when needed,
// and sets the cookie on w.
func (m *Manager) Save(w http.ResponseWriter, r *http.Request, who models.Identity) error {
	id := m.sessionID(r)
	if id == "" {
		var err error
		id, err = auth.GenerateSessionID()
		if err != nil {
			return err
		}
	}

	expires := m.Now().Add(m.opts.Lifetime)
	if err := m.store.Save(r.Context(), id, who, expires); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    auth.Sign(id, m.opts.Secret),
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(m.opts.Lifetime.Seconds()),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: m.opts.SameSite,
	})
	return nil
}
