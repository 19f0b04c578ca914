//go:build integration_test || all_tests

package test

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"

	"github.com/2beens/serjblog/internal/blog"
	"github.com/2beens/serjblog/internal/session"
	"github.com/2beens/serjblog/internal/web"
)

// pageView is the JSON document every page renders
type pageView struct {
	Page        string        `json:"page"`
	CurrentUser *web.ViewUser `json:"current_user"`
	Flashes     []string      `json:"flashes"`

	Posts    []blog.Post       `json:"posts"`
	Post     *blog.Post        `json:"post"`
	Comments []blog.Comment    `json:"comments"`
	Errors   map[string]string `json:"errors"`
}

// newClient returns a browser-like client: it keeps cookies, but does not
// follow redirects, so the tests can assert on them
func newClient(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (s *IntegrationTestSuite) get(client *http.Client, path string) *http.Response {
	req, err := http.NewRequest(http.MethodGet, serverEndpoint+path, nil)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")

	resp, err := client.Do(req)
	require.NoError(s.T(), err)
	s.T().Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *IntegrationTestSuite) postForm(client *http.Client, path string, values url.Values) *http.Response {
	req, err := http.NewRequest(http.MethodPost, serverEndpoint+path, strings.NewReader(values.Encode()))
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	require.NoError(s.T(), err)
	s.T().Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *IntegrationTestSuite) view(client *http.Client, path string) pageView {
	resp := s.get(client, path)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode, path)

	var v pageView
	require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (s *IntegrationTestSuite) register(client *http.Client, name, email, password string) *http.Response {
	return s.postForm(client, "/register", url.Values{
		"name":     {name},
		"email":    {email},
		"password": {password},
	})
}

func (s *IntegrationTestSuite) login(client *http.Client, email, password string) *http.Response {
	return s.postForm(client, "/login", url.Values{
		"email":    {email},
		"password": {password},
	})
}

// newUserClient registers a fresh (non-admin) user and returns its logged-in client
func (s *IntegrationTestSuite) newUserClient() (*http.Client, string) {
	client := newClient(s.T())
	email := gofakeit.Email()
	resp := s.register(client, gofakeit.Name(), email, gofakeit.Password(true, true, true, false, false, 12))
	require.Equal(s.T(), http.StatusSeeOther, resp.StatusCode)
	return client, email
}

func (s *IntegrationTestSuite) createPost(title string) {
	resp := s.postForm(s.adminClient, "/new-post", postValues(title))
	require.Equal(s.T(), http.StatusSeeOther, resp.StatusCode, title)
	require.Equal(s.T(), "/", resp.Header.Get("Location"))
}

func postValues(title string) url.Values {
	return url.Values{
		"title":    {title},
		"subtitle": {gofakeit.Sentence(4)},
		"body":     {gofakeit.Paragraph(1, 3, 10, " ")},
		"img_url":  {"https://example.com/" + gofakeit.Word() + ".jpg"},
	}
}

func (s *IntegrationTestSuite) rowsCount(query string, args ...any) int {
	var count int
	require.NoError(s.T(), s.DB.QueryRow(query, args...).Scan(&count))
	return count
}

func hasSessionCookie(client *http.Client) bool {
	u, _ := url.Parse(serverEndpoint)
	for _, c := range client.Jar.Cookies(u) {
		if c.Name == session.CookieName && c.Value != "" {
			return true
		}
	}
	return false
}
