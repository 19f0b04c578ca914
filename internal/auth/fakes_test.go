package auth

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/2beens/serjblog/internal/users"
)

type fakeUsersRepo struct {
	mu     sync.Mutex
	users  map[int]*users.User
	nextID int
	addErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{
		users:  map[int]*users.User{},
		nextID: 1,
	}
}

func (r *fakeUsersRepo) Add(_ context.Context, user *users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.addErr != nil {
		return r.addErr
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return users.ErrEmailExists
		}
	}
	user.ID = r.nextID
	r.nextID++
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUsersRepo) Get(_ context.Context, id int) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, users.ErrUserNotFound
}

type fakeIdentity struct {
	loggedIn  []*users.User
	loggedOut int
	loginErr  error
}

func (i *fakeIdentity) Login(_ context.Context, w http.ResponseWriter, user *users.User) error {
	if i.loginErr != nil {
		return i.loginErr
	}
	i.loggedIn = append(i.loggedIn, user)
	http.SetCookie(w, &http.Cookie{Name: "fake_session", Value: "x"})
	return nil
}

func (i *fakeIdentity) Logout(context.Context, http.ResponseWriter, *http.Request) error {
	i.loggedOut++
	return nil
}

type fakeSessionStore struct {
	sessions map[string]*Session
	getErr   error
	counter  int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]*Session{}}
}

func (s *fakeSessionStore) Login(_ context.Context, userID int, createdAt time.Time) (string, error) {
	s.counter++
	token := "token-" + strings.Repeat("x", s.counter)
	s.sessions[token] = &Session{Token: token, UserID: userID, CreatedAt: createdAt}
	return token, nil
}

func (s *fakeSessionStore) Logout(_ context.Context, token string) error {
	delete(s.sessions, token)
	return nil
}

func (s *fakeSessionStore) Get(_ context.Context, token string) (*Session, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	session, ok := s.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}
