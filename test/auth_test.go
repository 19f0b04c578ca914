//go:build integration_test || all_tests

package test

import (
	"net/http"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/2beens/serjblog/internal/auth"
)

func (s *IntegrationTestSuite) TestRegister_EstablishesSession() {
	client := newClient(s.T())
	email := gofakeit.Email()
	name := gofakeit.Name()

	resp := s.register(client, name, email, "some-password")
	s.Require().Equal(http.StatusSeeOther, resp.StatusCode)
	s.Equal("/", resp.Header.Get("Location"))
	s.True(hasSessionCookie(client))

	index := s.view(client, "/")
	s.Require().NotNil(index.CurrentUser)
	s.Equal(email, index.CurrentUser.Email)
	s.Equal(name, index.CurrentUser.Name)
	s.False(index.CurrentUser.IsAdmin)

	// stored password is a salted hash, never the plain text
	var storedPassword string
	s.Require().NoError(s.DB.QueryRow("SELECT password FROM users WHERE email = $1", email).Scan(&storedPassword))
	s.NotEqual("some-password", storedPassword)
	s.True(strings.HasPrefix(storedPassword, "pbkdf2:sha256:"), storedPassword)
}

func (s *IntegrationTestSuite) TestRegister_ExistingEmail() {
	email := gofakeit.Email()
	_ = s.register(newClient(s.T()), "First", email, "first-password")
	s.Equal(1, s.rowsCount("SELECT COUNT(*) FROM users WHERE email = $1", email))

	for i := 0; i < 2; i++ {
		client := newClient(s.T())
		resp := s.register(client, "Second", email, "second-password")
		s.Require().Equal(http.StatusSeeOther, resp.StatusCode)
		s.Equal("/login", resp.Header.Get("Location"))
		s.False(hasSessionCookie(client))

		loginPage := s.view(client, "/login")
		s.Equal([]string{auth.FlashEmailExists}, loginPage.Flashes)
	}

	s.Equal(1, s.rowsCount("SELECT COUNT(*) FROM users WHERE email = $1", email))
}

func (s *IntegrationTestSuite) TestLogin() {
	email := gofakeit.Email()
	_ = s.register(newClient(s.T()), "Login User", email, "correct-password")

	s.Run("wrong password", func() {
		client := newClient(s.T())
		resp := s.login(client, email, "wrong-password")
		s.Require().Equal(http.StatusSeeOther, resp.StatusCode)
		s.Equal("/login", resp.Header.Get("Location"))
		s.False(hasSessionCookie(client))

		loginPage := s.view(client, "/login")
		s.Nil(loginPage.CurrentUser)
		s.Equal([]string{auth.FlashIncorrectPassword}, loginPage.Flashes)

		// flashes are shown once
		s.Empty(s.view(client, "/login").Flashes)
	})

	s.Run("unknown email", func() {
		client := newClient(s.T())
		resp := s.login(client, "nobody-"+email, "correct-password")
		s.Require().Equal(http.StatusSeeOther, resp.StatusCode)
		s.Equal([]string{auth.FlashIncorrectEmail}, s.view(client, "/login").Flashes)
	})

	s.Run("success and logout", func() {
		client := newClient(s.T())
		resp := s.login(client, email, "correct-password")
		s.Require().Equal(http.StatusSeeOther, resp.StatusCode)
		s.Equal("/", resp.Header.Get("Location"))
		s.Require().NotNil(s.view(client, "/").CurrentUser)

		resp = s.get(client, "/logout")
		s.Require().Equal(http.StatusSeeOther, resp.StatusCode)
		s.Nil(s.view(client, "/").CurrentUser)
	})

	s.Run("invalid form is re-rendered", func() {
		client := newClient(s.T())
		resp := s.login(client, "not-an-email", "")
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		s.False(hasSessionCookie(client))
	})
}
