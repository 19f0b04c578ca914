package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/2beens/serjblog/internal/session"
	"github.com/2beens/serjblog/internal/users"
)

type sessionStore interface {
	Login(ctx context.Context, userID int, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) error
	Get(ctx context.Context, token string) (*Session, error)
}

type userLoader interface {
	Get(ctx context.Context, id int) (*users.User, error)
}

// Identity binds requests to users: the session store keeps the sessions,
// the cookie manager carries the session token to and from the browser.
type Identity struct {
	store   sessionStore
	cookies *session.Manager
	users   userLoader
}

func NewIdentity(store sessionStore, cookies *session.Manager, users userLoader) *Identity {
	return &Identity{
		store:   store,
		cookies: cookies,
		users:   users,
	}
}

func (i *Identity) Login(ctx context.Context, w http.ResponseWriter, user *users.User) error {
	token, err := i.store.Login(ctx, user.ID, time.Now())
	if err != nil {
		return fmt.Errorf("login user %d: %w", user.ID, err)
	}
	if err := i.cookies.SetSessionToken(w, token); err != nil {
		return fmt.Errorf("set session cookie: %w", err)
	}
	return nil
}

func (i *Identity) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	defer i.cookies.ClearSession(w)

	token, err := i.cookies.SessionToken(r)
	if err != nil {
		// nothing to remove from the store
		return nil
	}
	return i.store.Logout(ctx, token)
}

// Authenticate resolves the request session cookie to its user.
// session.ErrNoSession means there is no session cookie at all, stale sessions
// (bad signature, unknown or expired token, missing user) match session.ErrInvalidSession.
func (i *Identity) Authenticate(r *http.Request) (*users.User, error) {
	token, err := i.cookies.SessionToken(r)
	if err != nil {
		return nil, err
	}

	s, err := i.store.Get(r.Context(), token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %w", session.ErrInvalidSession, err)
		}
		return nil, err
	}

	user, err := i.users.Get(r.Context(), s.UserID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %w", session.ErrInvalidSession, err)
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}

	return user, nil
}

func (i *Identity) ClearSession(w http.ResponseWriter) {
	i.cookies.ClearSession(w)
}
