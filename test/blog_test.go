//go:build integration_test || all_tests

package test

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/2beens/serjblog/internal/blog"
)

func (s *IntegrationTestSuite) TestNewPost_ListedWithTodaysDate() {
	s.createPost("Hello World")

	index := s.view(newClient(s.T()), "/")
	var found []blog.Post
	for _, p := range index.Posts {
		if p.Title == "Hello World" {
			found = append(found, p)
		}
	}
	s.Require().Len(found, 1)
	s.Equal(time.Now().Format(blog.DateLayout), found[0].Date)
	s.Equal(1, found[0].AuthorID)
	s.Equal("Admin", found[0].AuthorName)

	// duplicate title is rejected on the form, no new row
	resp := s.postForm(s.adminClient, "/new-post", postValues("Hello World"))
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(1, s.rowsCount("SELECT COUNT(*) FROM blog_posts WHERE title = $1", "Hello World"))
}

func (s *IntegrationTestSuite) TestIndex_Idempotent() {
	s.createPost("First")
	s.createPost("Second")

	client := newClient(s.T())
	first := s.view(client, "/")
	second := s.view(client, "/")
	s.Require().Len(first.Posts, 2)
	s.Equal(first.Posts, second.Posts)
	s.Equal("First", first.Posts[0].Title)
	s.Equal("Second", first.Posts[1].Title)
}

func (s *IntegrationTestSuite) TestNonAdmin_Forbidden() {
	s.createPost("Untouchable")
	userClient, _ := s.newUserClient()
	anonClient := newClient(s.T())

	for _, client := range []*http.Client{userClient, anonClient} {
		s.Equal(http.StatusForbidden, s.get(client, "/new-post").StatusCode)
		s.Equal(http.StatusForbidden, s.postForm(client, "/new-post", postValues("Sneaky")).StatusCode)
		s.Equal(http.StatusForbidden, s.get(client, "/edit-post/1").StatusCode)
		s.Equal(http.StatusForbidden, s.postForm(client, "/edit-post/1", postValues("Renamed")).StatusCode)
		s.Equal(http.StatusForbidden, s.get(client, "/delete/1").StatusCode)
	}

	s.Equal(1, s.rowsCount("SELECT COUNT(*) FROM blog_posts"))
	s.Equal(1, s.rowsCount("SELECT COUNT(*) FROM blog_posts WHERE title = $1", "Untouchable"))
}

func (s *IntegrationTestSuite) TestEditPost_ByAdmin() {
	s.createPost("Before Edit")

	editForm := s.view(s.adminClient, "/edit-post/1")
	s.Equal("edit-post", editForm.Page)

	resp := s.postForm(s.adminClient, "/edit-post/1", postValues("After Edit"))
	s.Require().Equal(http.StatusSeeOther, resp.StatusCode)
	s.Equal("/post/1", resp.Header.Get("Location"))

	post := s.view(newClient(s.T()), "/post/1")
	s.Require().NotNil(post.Post)
	s.Equal("After Edit", post.Post.Title)
}

func (s *IntegrationTestSuite) TestDeletePost() {
	for i := 1; i <= 5; i++ {
		s.createPost(fmt.Sprintf("Post %d", i))
	}
	userClient, _ := s.newUserClient()
	resp := s.postForm(userClient, "/post/5", url.Values{"comment_text": {"soon gone"}})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal(1, s.rowsCount("SELECT COUNT(*) FROM comments WHERE post_id = 5"))

	resp = s.get(s.adminClient, "/delete/5")
	s.Require().Equal(http.StatusSeeOther, resp.StatusCode)
	s.Equal("/", resp.Header.Get("Location"))

	s.Equal(0, s.rowsCount("SELECT COUNT(*) FROM blog_posts WHERE id = 5"))
	s.Equal(4, s.rowsCount("SELECT COUNT(*) FROM blog_posts"))
	s.Equal(0, s.rowsCount("SELECT COUNT(*) FROM comments WHERE post_id = 5"))
	s.Equal(http.StatusNotFound, s.get(newClient(s.T()), "/post/5").StatusCode)

	// deleting again is a 404
	s.Equal(http.StatusNotFound, s.get(s.adminClient, "/delete/5").StatusCode)
}

func (s *IntegrationTestSuite) TestComments() {
	s.createPost("Commented")

	s.Run("anonymous comment is not stored", func() {
		client := newClient(s.T())
		resp := s.postForm(client, "/post/1", url.Values{"comment_text": {"hello"}})
		s.Require().Equal(http.StatusSeeOther, resp.StatusCode)
		s.Equal("/login", resp.Header.Get("Location"))
		s.Equal([]string{blog.FlashLoginToComment}, s.view(client, "/login").Flashes)
		s.Equal(0, s.rowsCount("SELECT COUNT(*) FROM comments"))
	})

	s.Run("user comments and deletes own comment", func() {
		client, _ := s.newUserClient()
		resp := s.postForm(client, "/post/1", url.Values{"comment_text": {"nice post"}})
		s.Require().Equal(http.StatusOK, resp.StatusCode)

		post := s.view(client, "/post/1")
		s.Require().Len(post.Comments, 1)
		comment := post.Comments[0]
		s.Equal("nice post", comment.Text)
		s.Equal(post.CurrentUser.ID, comment.AuthorID)

		resp = s.get(client, fmt.Sprintf("/delete/comment/%d/1", comment.ID))
		s.Require().Equal(http.StatusSeeOther, resp.StatusCode)
		s.Equal("/post/1", resp.Header.Get("Location"))
		s.Equal(0, s.rowsCount("SELECT COUNT(*) FROM comments"))
	})

	s.Run("user without comments cannot delete", func() {
		author, _ := s.newUserClient()
		s.postForm(author, "/post/1", url.Values{"comment_text": {"mine"}})
		s.Require().Equal(1, s.rowsCount("SELECT COUNT(*) FROM comments"))

		other, _ := s.newUserClient()
		s.Equal(http.StatusForbidden, s.get(other, "/delete/comment/1/1").StatusCode)
		s.Equal(http.StatusForbidden, s.get(newClient(s.T()), "/delete/comment/1/1").StatusCode)
		s.Equal(1, s.rowsCount("SELECT COUNT(*) FROM comments"))
	})
}

func (s *IntegrationTestSuite) TestUnknownPost() {
	s.Equal(http.StatusNotFound, s.get(newClient(s.T()), "/post/999").StatusCode)
	s.Equal(http.StatusNotFound, s.get(s.adminClient, "/edit-post/999").StatusCode)
	s.Equal(http.StatusNotFound, s.get(newClient(s.T()), "/no/such/page").StatusCode)
}
