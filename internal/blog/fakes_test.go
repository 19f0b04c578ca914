package blog

import (
	"context"
	"sort"
	"sync"
)

var _ blogRepo = (*repoFake)(nil)

type repoFake struct {
	mutex    sync.Mutex
	posts    map[int]*Post
	comments map[int]*Comment
	names    map[int]string
	nextID   int
}

func newRepoFake() *repoFake {
	return &repoFake{
		posts:    map[int]*Post{},
		comments: map[int]*Comment{},
		names:    map[int]string{},
		nextID:   1,
	}
}

func (r *repoFake) AllPosts(context.Context) ([]*Post, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var posts []*Post
	for _, p := range r.posts {
		copied := *p
		copied.AuthorName = r.names[p.AuthorID]
		posts = append(posts, &copied)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].ID < posts[j].ID
	})
	return posts, nil
}

func (r *repoFake) GetPost(_ context.Context, id int) (*Post, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	copied := *p
	copied.AuthorName = r.names[p.AuthorID]
	return &copied, nil
}

func (r *repoFake) AddPost(_ context.Context, post *Post) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, p := range r.posts {
		if p.Title == post.Title {
			return ErrPostTitleExists
		}
	}
	post.ID = r.nextID
	r.nextID++
	copied := *post
	r.posts[post.ID] = &copied
	return nil
}

func (r *repoFake) UpdatePost(_ context.Context, post *Post) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	existing, ok := r.posts[post.ID]
	if !ok {
		return ErrPostNotFound
	}
	for _, p := range r.posts {
		if p.ID != post.ID && p.Title == post.Title {
			return ErrPostTitleExists
		}
	}
	existing.AuthorID = post.AuthorID
	existing.Title = post.Title
	existing.Subtitle = post.Subtitle
	existing.Body = post.Body
	existing.ImgURL = post.ImgURL
	return nil
}

func (r *repoFake) DeletePost(_ context.Context, id int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.posts[id]; !ok {
		return ErrPostNotFound
	}
	for cid, c := range r.comments {
		if c.PostID == id {
			delete(r.comments, cid)
		}
	}
	delete(r.posts, id)
	return nil
}

func (r *repoFake) PostComments(_ context.Context, postID int) ([]*Comment, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var comments []*Comment
	for _, c := range r.comments {
		if c.PostID == postID {
			copied := *c
			copied.AuthorName = r.names[c.AuthorID]
			comments = append(comments, &copied)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].ID < comments[j].ID
	})
	return comments, nil
}

func (r *repoFake) AddComment(_ context.Context, comment *Comment) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.posts[comment.PostID]; !ok {
		return ErrPostNotFound
	}
	comment.ID = r.nextID
	r.nextID++
	copied := *comment
	r.comments[comment.ID] = &copied
	return nil
}

func (r *repoFake) GetComment(_ context.Context, id int) (*Comment, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	c, ok := r.comments[id]
	if !ok {
		return nil, ErrCommentNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *repoFake) DeleteComment(_ context.Context, id int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.comments[id]; !ok {
		return ErrCommentNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *repoFake) commentsCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.comments)
}
