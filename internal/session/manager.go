package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/USSTM/swagger-analyzer/internal/config"
	"github.com/USSTM/swagger-analyzer/internal/logging"
	"github.com/google/uuid"
)

// Manager binds a browser cookie to a stored State.
type Manager struct {
	store      Store
	tokens     *TokenService
	cookieName string
	secure     bool
	expiry     time.Duration
}

func NewManager(store Store, tokens *TokenService, cfg config.SessionConfig) *Manager {
	return &Manager{
		store:      store,
		tokens:     tokens,
		cookieName: cfg.CookieName,
		secure:     cfg.Secure,
		expiry:     cfg.Expiry,
	}
}

// Load returns the caller's session. A missing, tampered or expired cookie, or
// a session the store no longer has, starts a fresh session and sets a new cookie.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) (*State, error) {
	ctx := r.Context()

	if cookie, err := r.Cookie(m.cookieName); err == nil {
		id, err := m.tokens.Validate(ctx, cookie.Value)
		if err == nil {
			state, err := m.store.Get(ctx, id.String())
			if err == nil {
				return state, nil
			}
			if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
		} else {
			logging.Debug("Discarding invalid session cookie", "error", err)
		}
	}

	id := uuid.New()
	token, err := m.tokens.Issue(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.expiry.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	state := NewState(id.String())
	if err := m.store.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (m *Manager) Save(r *http.Request, state *State) error {
	return m.store.Save(r.Context(), state)
}
