package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	CookieName      = "blog_session"
	FlashCookieName = "blog_flash"
	flashCookieTTL  = 5 * time.Minute
)

var (
	ErrNoSession      = errors.New("no session cookie")
	ErrInvalidSession = errors.New("invalid session cookie")
)

type flashClaims struct {
	Flashes []string `json:"flashes"`
	jwt.RegisteredClaims
}

// Manager signs and verifies the session and flash cookies.
// The session cookie carries only the opaque session token (as the jwt ID),
// the token is resolved to a user by the auth service.
type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration, secureCookies bool) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secureCookies,
		now:    time.Now,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func (m *Manager) SetSessionToken(w http.ResponseWriter, token string) error {
	now := m.now()
	claims := jwt.RegisteredClaims{
		ID:        token,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	signed, err := m.sign(claims)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}

	http.SetCookie(w, m.cookie(CookieName, signed, now.Add(m.ttl)))
	return nil
}

// SessionToken returns the verified session token carried by the request cookie
func (m *Manager) SessionToken(r *http.Request) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", ErrNoSession
	}

	var claims jwt.RegisteredClaims
	if err := m.parse(cookie.Value, &claims); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidSession, err)
	}
	if claims.ID == "" {
		return "", ErrInvalidSession
	}

	return claims.ID, nil
}

func (m *Manager) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, m.expiredCookie(CookieName))
}

// AddFlash appends a message to the flashes already pending on the request
// and writes them back, so they survive the following redirect.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, message string) error {
	flashes := append(m.pendingFlashes(r), message)

	now := m.now()
	signed, err := m.sign(flashClaims{
		Flashes: flashes,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(flashCookieTTL)),
		},
	})
	if err != nil {
		return fmt.Errorf("sign flashes: %w", err)
	}

	http.SetCookie(w, m.cookie(FlashCookieName, signed, now.Add(flashCookieTTL)))
	return nil
}

// PopFlashes returns the pending flashes and clears them
func (m *Manager) PopFlashes(w http.ResponseWriter, r *http.Request) []string {
	flashes := m.pendingFlashes(r)
	if _, err := r.Cookie(FlashCookieName); err == nil {
		http.SetCookie(w, m.expiredCookie(FlashCookieName))
	}
	return flashes
}

func (m *Manager) pendingFlashes(r *http.Request) []string {
	cookie, err := r.Cookie(FlashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	var claims flashClaims
	if err := m.parse(cookie.Value, &claims); err != nil {
		return nil
	}
	return claims.Flashes
}

func (m *Manager) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) parse(tokenString string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(*jwt.Token) (any, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	return err
}

func (m *Manager) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) expiredCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
