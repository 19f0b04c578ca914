package blog

import "errors"

const DateLayout = "January 02, 2006"

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrPostTitleExists = errors.New("post title already exists")
	ErrCommentNotFound = errors.New("comment not found")
)

type Post struct {
	ID         int    `json:"id"`
	AuthorID   int    `json:"author_id"`
	AuthorName string `json:"author_name"`
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	Date       string `json:"date"`
	Body       string `json:"body"`
	ImgURL     string `json:"img_url"`
}

type Comment struct {
	ID         int    `json:"id"`
	AuthorID   int    `json:"author_id"`
	AuthorName string `json:"author_name"`
	PostID     int    `json:"post_id"`
	Text       string `json:"text"`
}

type PostForm struct {
	Title    string `json:"title" validate:"required,max=250"`
	Subtitle string `json:"subtitle" validate:"required,max=250"`
	Body     string `json:"body" validate:"required"`
	ImgURL   string `json:"img_url" validate:"required,url,max=250"`
}

type CommentForm struct {
	Text string `json:"comment_text" validate:"required"`
}

func (f PostForm) apply(post *Post) {
	post.Title = f.Title
	post.Subtitle = f.Subtitle
	post.Body = f.Body
	post.ImgURL = f.ImgURL
}

func postForm(post *Post) PostForm {
	return PostForm{
		Title:    post.Title,
		Subtitle: post.Subtitle,
		Body:     post.Body,
		ImgURL:   post.ImgURL,
	}
}
